package filter

// Format identifies the file format of a scan's data source. The format
// bounds which filter primitives may be pushed into the scan.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatParquet
	FormatDWRF
	FormatORC
	FormatText
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "PARQUET"
	case FormatDWRF:
		return "DWRF"
	case FormatORC:
		return "ORC"
	case FormatText:
		return "TEXT"
	case FormatJSON:
		return "JSON"
	default:
		return "UNKNOWN"
	}
}

// Supports reports whether the format's reader can evaluate the given
// primitive. The parquet reader handles only range and value-set kinds;
// every other format accepts all of them.
func (f Format) Supports(s Subfield) bool {
	if f != FormatParquet {
		return true
	}
	switch s.Kind() {
	case KindBigintRange, KindDoubleRange, KindBytesValues, KindBytesRange,
		KindBigintValuesUsingBitmask, KindBigintValuesUsingHashTable:
		return true
	default:
		return false
	}
}

// SupportsAll reports whether every primitive in the map is supported.
func (f Format) SupportsAll(filters map[string]Subfield) bool {
	for _, s := range filters {
		if !f.Supports(s) {
			return false
		}
	}
	return true
}
