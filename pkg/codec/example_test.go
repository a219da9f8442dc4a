package codec_test

import (
	"fmt"
	"log"

	"github.com/ssargent/rowdb/pkg/codec"
)

// ExampleRecordCodec_basic demonstrates basic record encoding and decoding
func ExampleRecordCodec_basic() {
	c := codec.NewRecordCodec()

	line, err := c.Encode(1, []string{"value3", "value4"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Line: %s\n", line)

	record, err := c.Decode(line)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("ID: %d\n", record.ID)
	fmt.Printf("Values: %q\n", record.Values)
	fmt.Printf("Fields: %q\n", record.Fields())

	// Output:
	// Line: 1;value3;value4;
	// ID: 1
	// Values: ["value3" "value4"]
	// Fields: ["1" "value3" "value4"]
}

// ExampleRecordCodec_ParseID demonstrates reading only the identifier of a line
func ExampleRecordCodec_ParseID() {
	c := codec.NewRecordCodec()

	id, err := c.ParseID("17;alice;admin;\n")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(id)

	_, err = c.ParseID("not-a-record")
	fmt.Println(err != nil)

	// Output:
	// 17
	// true
}
