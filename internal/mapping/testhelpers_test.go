package mapping

// mappingRow builds a raw mapping row with the given fields set.
func mappingRow(values map[Field]string) []string {
	width := 0
	for f := range values {
		if int(f)+1 > width {
			width = int(f) + 1
		}
	}
	row := make([]string, width)
	for f, v := range values {
		row[f] = v
	}
	return row
}

func header(width int) []string {
	out := make([]string, width)
	for i := range out {
		out[i] = "col"
	}
	return out
}
