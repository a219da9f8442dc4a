// Package codec provides record serialization and deserialization for rowdb.
//
// The codec package implements the line-oriented text format used by every
// table file. One record is one line; the table file is the sequence of its
// lines.
//
// # Record Format
//
// Records are serialized as separator-terminated fields:
//
//	<id>;<field1>;<field2>;...;<fieldN>;
//
// Fields:
//   - id: non-negative decimal integer, unique within the table
//   - field1..fieldN: the record's values, in order
//
// Every token, including the last value, is followed by the separator. A
// record with no values is encoded as "<id>;". Lines are terminated by '\n'
// when written to a table file; Encode does not add the terminator.
//
// # Splitting
//
// Because the line ends with a separator, a naive split yields a spurious
// empty token at the end. Decode drops exactly that trailing token, so empty
// values in the middle of a record survive the round trip:
//
//	"3;a;;b;" -> ID 3, Values ["a", "", "b"]
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	line, err := c.Encode(1, []string{"value3", "value4"})
//	if err != nil {
//	    return err
//	}
//
//	record, err := c.Decode(line)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(record.Fields()) // [1 value3 value4]
//
// # Error Handling
//
// There is no escaping. Encode rejects values containing the separator or a
// line break with ErrInvalidValue. Decode and ParseID return ErrMalformedRecord
// for lines that do not start with "<integer>;".
//
// # Thread Safety
//
// RecordCodec holds no state and is safe for concurrent use.
package codec
