package filerepo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/code19m/errx"
	"gopkg.in/yaml.v3"
)

const (
	CodeDecodeFailed   = "FILE_DECODE_FAILED"
	CodeEncodeFailed   = "FILE_ENCODE_FAILED"
	CodeNotImplemented = "NOT_IMPLEMENTED"

	maxLineSize = 1 << 20 // 1MB
)

// Codec reads and writes a whole file of entities.
type Codec[E any] interface {
	// Name identifies the format in logs and errors.
	Name() string
	// Decode reads every entity in r in file order.
	Decode(r io.Reader) ([]E, error)
	// Encode writes es to w in the given order.
	Encode(w io.Writer, es []E) error
}

// JSONLines stores one JSON document per line.
type JSONLines[E any] struct{}

func (JSONLines[E]) Name() string { return "jsonl" }

func (c JSONLines[E]) Decode(r io.Reader) ([]E, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	entities := make([]E, 0)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var e E
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, decodeError(c.Name(), err, errx.D{"line": fmt.Sprint(line)})
		}
		entities = append(entities, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, decodeError(c.Name(), err, errx.D{"line": fmt.Sprint(line)})
	}

	return entities, nil
}

func (c JSONLines[E]) Encode(w io.Writer, es []E) error {
	enc := json.NewEncoder(w)
	for _, e := range es {
		if err := enc.Encode(e); err != nil {
			return encodeError(c.Name(), err)
		}
	}
	return nil
}

// YAML stores all entities as a single YAML sequence.
type YAML[E any] struct{}

func (YAML[E]) Name() string { return "yaml" }

func (c YAML[E]) Decode(r io.Reader) ([]E, error) {
	entities := make([]E, 0)
	err := yaml.NewDecoder(r).Decode(&entities)
	if errors.Is(err, io.EOF) {
		return []E{}, nil
	}
	if err != nil {
		return nil, decodeError(c.Name(), err, nil)
	}
	return entities, nil
}

func (c YAML[E]) Encode(w io.Writer, es []E) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd // two spaces like the config files

	if err := enc.Encode(es); err != nil {
		return encodeError(c.Name(), err)
	}
	if err := enc.Close(); err != nil {
		return encodeError(c.Name(), err)
	}
	return nil
}

// CSV is a placeholder for a comma-separated format. Every call fails with
// NOT_IMPLEMENTED.
type CSV[E any] struct{}

func (CSV[E]) Name() string { return "csv" }

func (c CSV[E]) Decode(io.Reader) ([]E, error) {
	return nil, notImplemented(c.Name())
}

func (c CSV[E]) Encode(io.Writer, []E) error {
	return notImplemented(c.Name())
}

func decodeError(format string, err error, details errx.D) error {
	if details == nil {
		details = errx.D{}
	}
	details["format"] = format
	return errx.Wrap(err,
		errx.WithCode(CodeDecodeFailed),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(details),
	)
}

func encodeError(format string, err error) error {
	return errx.Wrap(err,
		errx.WithCode(CodeEncodeFailed),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"format": format}),
	)
}

func notImplemented(format string) error {
	return errx.New(
		fmt.Sprintf("%s file backend is not implemented", format),
		errx.WithCode(CodeNotImplemented),
		errx.WithType(errx.T_Internal),
	)
}
