package lexicon

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/derdie/internal/model"
)

//go:embed data/sample.tsv
var sampleTSV []byte

// LoadResult holds the parsed nouns and the number of rejected rows.
type LoadResult struct {
	Nouns   []model.Noun
	Skipped int
}

// LoadNouns reads a noun table from a TSV, CSV or XLSX file.
func LoadNouns(path string) (LoadResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadWorkbook(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return LoadResult{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only noun table.
			_ = cerr
		}
	}()
	return ParseNouns(file)
}

// SampleNouns returns the bundled sample table.
func SampleNouns() (LoadResult, error) {
	return ParseNouns(bytes.NewReader(sampleTSV))
}

// ParseNouns reads delimited rows of word, gender, usage and an optional
// ending column. Tabs are preferred over commas. A header row is skipped.
func ParseNouns(r io.Reader) (LoadResult, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sep := ","
		if strings.Contains(line, "\t") {
			sep = "\t"
		}
		rows = append(rows, strings.Split(line, sep))
	}
	if err := scanner.Err(); err != nil {
		return LoadResult{}, err
	}
	return nounsFromRows(rows)
}

func loadWorkbook(path string) (LoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return LoadResult{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return nounsFromRows(rows)
}

func nounsFromRows(rows [][]string) (LoadResult, error) {
	var res LoadResult
	type key struct {
		word   string
		gender model.Gender
	}
	seen := map[key]struct{}{}
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		noun, ok := parseRow(row)
		if !ok {
			res.Skipped++
			continue
		}
		k := key{word: noun.Word, gender: noun.Gender}
		// Melted tables repeat a noun once per ending.
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		res.Nouns = append(res.Nouns, noun)
	}
	if len(res.Nouns) == 0 {
		return res, fmt.Errorf("noun table is empty")
	}
	return res, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), "word")
}

func parseRow(row []string) (model.Noun, bool) {
	if len(row) < 2 {
		return model.Noun{}, false
	}
	word := strings.TrimSpace(row[0])
	if !ValidWord(word) {
		return model.Noun{}, false
	}
	gender, err := model.ParseGender(row[1])
	if err != nil {
		return model.Noun{}, false
	}
	usage := 0
	if len(row) > 2 {
		raw := strings.TrimSpace(row[2])
		if raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				return model.Noun{}, false
			}
			usage = parsed
		}
	}
	return model.Noun{Word: word, Gender: gender, Usage: usage}, true
}
