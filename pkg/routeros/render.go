package routeros

import (
	"sort"
	"strconv"
	"strings"
)

// RenderScript serializes an ordered mutation list into a RouterOS
// configuration script, one command per line. Fields are emitted in
// alphabetical order so the same mutations always render the same
// script.
func RenderScript(mutations []Mutation) string {
	var sb strings.Builder

	for _, m := range mutations {
		sb.WriteByte('/')
		sb.WriteString(m.Path)

		switch m.Op {
		case OpAdd:
			sb.WriteString(" add")
			writeFields(&sb, m.Set)
		case OpUpdate:
			sb.WriteString(" set")

			if len(m.Key) > 0 {
				sb.WriteString(" [ find")
				writeFields(&sb, m.Key)
				sb.WriteString(" ]")
			}

			writeFields(&sb, m.Set)
		case OpRemove:
			sb.WriteString(" remove [ find")
			writeFields(&sb, m.Key)
			sb.WriteString(" ]")
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

func writeFields(sb *strings.Builder, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		sb.WriteByte(' ')
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(quoteValue(fields[name]))
	}
}

// quoteValue wraps a value in quotes when it contains characters the
// RouterOS console would not read back as a single word.
func quoteValue(v string) string {
	if v == "" {
		return `""`
	}

	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '.' || r == ',' || r == '/' || r == ':' || r == '_':
		default:
			return strconv.Quote(v)
		}
	}

	return v
}
