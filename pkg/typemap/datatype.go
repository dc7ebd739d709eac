package typemap

// DataType is the canonical type of a variable node's value.
type DataType uint8

const (
	// DataTypeStruct is the structured/unknown placeholder type.
	// It is the zero value so unmapped input degrades to it.
	DataTypeStruct DataType = iota
	DataTypeBool
	DataTypeInt8
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeUint8
	DataTypeUint16
	DataTypeUint32
	DataTypeUint64
	DataTypeFloat32
	DataTypeFloat64
	DataTypeString
	DataTypeEnum
)

// String returns the data type name.
func (d DataType) String() string {
	names := []string{
		"struct", "bool", "int8", "int16", "int32", "int64",
		"uint8", "uint16", "uint32", "uint64", "float32", "float64",
		"string", "enum",
	}
	if int(d) < len(names) {
		return names[d]
	}
	return "struct"
}

// IsScalar reports whether the type is a plain scalar (everything
// except the structured placeholder).
func (d DataType) IsScalar() bool {
	return d != DataTypeStruct
}
