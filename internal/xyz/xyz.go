// Package xyz reads and writes the plain XYZ structure format: an atom
// count line, a free-text label line, then one "TYPE X Y Z" line per atom.
package xyz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/molopt/internal/molecule"
)

// ErrMalformed is the sentinel matched by every ParseError.
var ErrMalformed = errors.New("xyz: malformed input")

// ParseError reports a malformed line. Line is 1-based.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("xyz: line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("xyz: line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

// File is a parsed structure.
type File struct {
	Label string
	Atoms []molecule.Atom
}

// Read parses an XYZ document. Masses are taken from masses; a species
// missing from it fails with a ParseError wrapping an
// *molecule.UnknownSpeciesError. Blank lines after the atom block are
// ignored.
func Read(r io.Reader, masses molecule.MassTable) (*File, error) {
	scanner := bufio.NewScanner(r)
	line := 0

	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		line++
		return scanner.Text(), true
	}

	countLine, ok := next()
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, scanError(line, err)
		}
		return nil, &ParseError{Line: 1, Msg: "missing atom count"}
	}
	count, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return nil, &ParseError{Line: line, Msg: "invalid atom count", Err: err}
	}
	if count < 0 {
		return nil, &ParseError{Line: line, Msg: "negative atom count"}
	}

	label, ok := next()
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, scanError(line, err)
		}
		return nil, &ParseError{Line: 2, Msg: "missing label line"}
	}

	f := &File{Label: strings.TrimSpace(label), Atoms: make([]molecule.Atom, 0, count)}

	for {
		text, ok := next()
		if !ok {
			break
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(f.Atoms) == count {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("more than %d atoms", count)}
		}
		atom, err := parseAtom(fields, masses)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = line
				return nil, pe
			}
			return nil, &ParseError{Line: line, Msg: "invalid atom", Err: err}
		}
		f.Atoms = append(f.Atoms, atom)
	}
	if err := scanner.Err(); err != nil {
		return nil, scanError(line, err)
	}

	if len(f.Atoms) != count {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("expected %d atoms, found %d", count, len(f.Atoms))}
	}

	return f, nil
}

// scanError reports a read failure on the line after the last one scanned.
func scanError(line int, err error) error {
	if errors.Is(err, bufio.ErrTooLong) {
		return &ParseError{Line: line + 1, Msg: "line too long", Err: err}
	}
	return err
}

func parseAtom(fields []string, masses molecule.MassTable) (molecule.Atom, error) {
	if len(fields) != 4 {
		return molecule.Atom{}, &ParseError{Msg: fmt.Sprintf("expected 4 fields, got %d", len(fields))}
	}

	var coords [3]float64
	for i := range coords {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return molecule.Atom{}, &ParseError{Msg: "invalid coordinate", Err: err}
		}
		coords[i] = v
	}

	pos := molecule.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}
	return molecule.NewAtom(molecule.Species(fields[0]), pos, masses)
}

// ReadFile reads the XYZ file at path.
func ReadFile(path string, masses molecule.MassTable) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Read(fh, masses)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Write emits species and positions as an XYZ document.
func Write(w io.Writer, label string, species []molecule.Species, positions []molecule.Vec3) error {
	if len(species) != len(positions) {
		return fmt.Errorf("xyz: %d species for %d positions", len(species), len(positions))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", len(species), label)
	for i, s := range species {
		p := positions[i]
		fmt.Fprintf(bw, "%s %.6f %.6f %.6f\n", s, p.X, p.Y, p.Z)
	}
	return bw.Flush()
}

// WriteFile writes an XYZ document to path.
func WriteFile(path, label string, species []molecule.Species, positions []molecule.Vec3) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(fh, label, species, positions); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
