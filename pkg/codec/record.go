package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Separator terminates the id and every field of an encoded record
	Separator = ";"
	// LineTerminator ends each record in a table file
	LineTerminator = "\n"
	// MaxLineSize bounds an encoded record including its line terminator.
	// Readers size their line buffers to it.
	MaxLineSize = 16 * 1024 * 1024
)

var (
	ErrInvalidValue    = errors.New("invalid field value")
	ErrMalformedRecord = errors.New("malformed record")
)

// Record is one decoded table row
type Record struct {
	ID     int64    // Identifier, assigned once
	Values []string // Field values in order
}

// Fields returns the id followed by the values, mirroring the stored layout
func (r *Record) Fields() []string {
	fields := make([]string, 0, len(r.Values)+1)
	fields = append(fields, strconv.FormatInt(r.ID, 10))
	return append(fields, r.Values...)
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Validate checks values before an id is known. It rejects values containing
// the separator or a line break, and records that exceed MaxLineSize even
// with a one digit id. Encode applies the exact limit.
func (c *RecordCodec) Validate(values []string) error {
	size := 1 + len(Separator) + len(LineTerminator)
	for i, v := range values {
		if strings.ContainsAny(v, Separator+"\r\n") {
			return fmt.Errorf("%w: field %d contains a separator or line break", ErrInvalidValue, i)
		}
		size += len(v) + len(Separator)
	}
	if size > MaxLineSize {
		return fmt.Errorf("%w: record exceeds %d bytes", ErrInvalidValue, MaxLineSize)
	}
	return nil
}

// Encode serializes an id and its values into one line, without the line terminator
// Format: <id>;<v1>;...;<vN>;
func (c *RecordCodec) Encode(id int64, values []string) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("%w: negative id %d", ErrMalformedRecord, id)
	}

	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(id, 10))
	sb.WriteString(Separator)
	for i, v := range values {
		if strings.ContainsAny(v, Separator+"\r\n") {
			return "", fmt.Errorf("%w: field %d contains a separator or line break", ErrInvalidValue, i)
		}
		if sb.Len()+len(v)+len(Separator)+len(LineTerminator) > MaxLineSize {
			return "", fmt.Errorf("%w: record exceeds %d bytes", ErrInvalidValue, MaxLineSize)
		}
		sb.WriteString(v)
		sb.WriteString(Separator)
	}

	return sb.String(), nil
}

// Decode parses a line back into a Record
func (c *RecordCodec) Decode(line string) (*Record, error) {
	line = trimLineEnding(line)

	id, err := c.ParseID(line)
	if err != nil {
		return nil, err
	}

	tokens := Split(line)
	return &Record{
		ID:     id,
		Values: tokens[1:],
	}, nil
}

// ParseID reads the leading identifier of a line
func (c *RecordCodec) ParseID(line string) (int64, error) {
	head, _, found := strings.Cut(trimLineEnding(line), Separator)
	if !found {
		return 0, fmt.Errorf("%w: missing separator in %q", ErrMalformedRecord, line)
	}
	if head == "" {
		return 0, fmt.Errorf("%w: empty id", ErrMalformedRecord)
	}
	for i := 0; i < len(head); i++ {
		if head[i] < '0' || head[i] > '9' {
			return 0, fmt.Errorf("%w: id %q is not a non-negative integer", ErrMalformedRecord, head)
		}
	}

	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return id, nil
}

// Matches reports whether the line encodes the given id
func (c *RecordCodec) Matches(line string, id int64) bool {
	got, err := c.ParseID(line)
	return err == nil && got == id
}

// Split breaks a line on the separator and drops the single empty token left
// by the trailing separator
func Split(line string) []string {
	tokens := strings.Split(trimLineEnding(line), Separator)
	if n := len(tokens); n > 1 && tokens[n-1] == "" {
		tokens = tokens[:n-1]
	}
	return tokens
}

func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, LineTerminator)
	return strings.TrimSuffix(line, "\r")
}
