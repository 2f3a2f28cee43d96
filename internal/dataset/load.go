package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"diarisk/internal/common"
)

// Load reads a dataset CSV with a header row naming the eight feature
// columns plus the Outcome label column. Rows with non-numeric cells or
// labels outside {0,1} are skipped with a warning.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Path: path, Reason: "file not found or unreadable"}
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, &DataError{Path: path, Reason: "missing or unreadable header row"}
	}

	// Map header indices
	indices := make(map[string]int)
	for i, col := range header {
		indices[col] = i
	}

	if _, ok := indices[common.LabelColumn]; !ok {
		return nil, &DataError{Path: path, Reason: "label column " + common.LabelColumn + " not found"}
	}
	for _, name := range common.FeatureNames {
		if _, ok := indices[name]; !ok {
			return nil, &DataError{Path: path, Reason: "feature column " + name + " not found"}
		}
	}

	ds := &Dataset{Columns: common.FeatureNames}
	labelIdx := indices[common.LabelColumn]
	skipped := 0

	for lineNo := 2; ; lineNo++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		row := make([]float64, len(common.FeatureNames))
		valid := true
		for j, name := range common.FeatureNames {
			v, err := strconv.ParseFloat(record[indices[name]], 64)
			if err != nil {
				valid = false
				break
			}
			row[j] = v
		}
		if !valid {
			log.Warn().Str("file", path).Int("line", lineNo).Msg("Skipping row with non-numeric feature value")
			skipped++
			continue
		}

		label, err := strconv.Atoi(record[labelIdx])
		if err != nil || (label != 0 && label != 1) {
			log.Warn().Str("file", path).Int("line", lineNo).Msg("Skipping row with invalid outcome label")
			skipped++
			continue
		}

		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, label)
	}

	if ds.Len() == 0 {
		return nil, &DataError{Path: path, Reason: "no usable data rows"}
	}

	neg, pos := ds.ClassCounts()
	log.Info().
		Str("file", path).
		Int("rows", ds.Len()).
		Int("skipped", skipped).
		Int("negative", neg).
		Int("positive", pos).
		Msg("Dataset loaded")

	return ds, nil
}
