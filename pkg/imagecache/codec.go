package imagecache

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec serializes the record collection to the stored blob.
type Codec interface {
	// Name identifies the codec in configuration.
	Name() string

	Marshal(records []Record) ([]byte, error)
	Unmarshal(data []byte) ([]Record, error)
}

// JSONCodec stores records as a JSON array, the format browsers wrote.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

func (JSONCodec) Unmarshal(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// cborEncMode produces canonical, definite-length CBOR.
var cborEncMode cbor.EncMode

// cborDecMode is the CBOR decoder mode for the record collection.
var cborDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}
	cborEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create image cache CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	cborDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create image cache CBOR decoder mode: %v", err))
	}
}

// CBORCodec stores records as a canonical CBOR array.
type CBORCodec struct{}

func (CBORCodec) Name() string { return "cbor" }

func (CBORCodec) Marshal(records []Record) ([]byte, error) {
	return cborEncMode.Marshal(records)
}

func (CBORCodec) Unmarshal(data []byte) ([]Record, error) {
	var records []Record
	if err := cborDecMode.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CodecByName returns the codec registered under name. Empty means JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown image cache codec %q", name)
	}
}
