package typemap

import (
	"strings"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// vendorTypes is the closed mapping table from lowercase vendor type
// names to canonical types. IEC 61131-3 names and the common CLR-style
// spellings emitted by engineering tools are both covered.
var vendorTypes = map[string]DataType{
	// Boolean
	"bool":    DataTypeBool,
	"boolean": DataTypeBool,
	"bit":     DataTypeBool,

	// Signed integers
	"sint":  DataTypeInt8,
	"int8":  DataTypeInt8,
	"sbyte": DataTypeInt8,
	"int":   DataTypeInt16,
	"int16": DataTypeInt16,
	"short": DataTypeInt16,
	"dint":  DataTypeInt32,
	"int32": DataTypeInt32,
	"lint":  DataTypeInt64,
	"int64": DataTypeInt64,
	"long":  DataTypeInt64,

	// Unsigned integers
	"usint":  DataTypeUint8,
	"byte":   DataTypeUint8,
	"uint8":  DataTypeUint8,
	"uint":   DataTypeUint16,
	"word":   DataTypeUint16,
	"uint16": DataTypeUint16,
	"ushort": DataTypeUint16,
	"udint":  DataTypeUint32,
	"dword":  DataTypeUint32,
	"uint32": DataTypeUint32,
	"ulint":  DataTypeUint64,
	"lword":  DataTypeUint64,
	"uint64": DataTypeUint64,
	"ulong":  DataTypeUint64,

	// Floating point
	"real":    DataTypeFloat32,
	"float":   DataTypeFloat32,
	"float32": DataTypeFloat32,
	"single":  DataTypeFloat32,
	"lreal":   DataTypeFloat64,
	"float64": DataTypeFloat64,
	"double":  DataTypeFloat64,

	// Strings
	"string":  DataTypeString,
	"wstring": DataTypeString,

	// Enumerations
	"enum":        DataTypeEnum,
	"enumeration": DataTypeEnum,

	// Date/time families collapse to uint32 raw counters.
	"date":          DataTypeUint32,
	"time":          DataTypeUint32,
	"ltime":         DataTypeUint32,
	"tod":           DataTypeUint32,
	"time_of_day":   DataTypeUint32,
	"dt":            DataTypeUint32,
	"date_and_time": DataTypeUint32,
}

// MapName maps a vendor type name to a canonical type. Unknown names
// map to DataTypeStruct; MapName never fails.
func MapName(name string) DataType {
	if dt, ok := vendorTypes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return dt
	}
	return DataTypeStruct
}

// Map resolves a descriptor's canonical type, preferring the base type
// name over the nominal type name so aliased vendor types land on
// their underlying primitive.
func Map(desc *tag.Descriptor) DataType {
	if desc == nil {
		return DataTypeStruct
	}
	name := desc.TypeName
	if desc.BaseTypeName != "" {
		name = desc.BaseTypeName
	}
	return MapName(name)
}
