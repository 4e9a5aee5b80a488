// Package plants loads the Global Power Plant Database and selects the
// renewable installations shown on the plant map.
package plants

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

// Column names in the plant database header
const (
	colName       = "name"
	colID         = "gppd_idnr"
	colCountry    = "country"
	colCountryLng = "country_long"
	colCapacity   = "capacity_mw"
	colLatitude   = "latitude"
	colLongitude  = "longitude"
	colFuel       = "primary_fuel"
	colYear       = "commissioning_year"
)

var requiredColumns = []string{colName, colCountryLng, colCapacity, colLatitude, colLongitude, colFuel}

// LoadResult holds the parsed plants and the number of rows that were dropped
type LoadResult struct {
	Plants  []models.PlantRecord
	Skipped int
}

// LoadFile reads the plant database at path
func LoadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plant database: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}

// LoadCSV reads plant rows, locating columns by header name.
// Rows with an unparsable capacity or out-of-range fields are skipped.
// Rows without coordinates are kept with HasLocation false.
func LoadCSV(r io.Reader) (*LoadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("plant database is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	validate := validator.New()
	res := &LoadResult{}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		p, ok := parseRow(field, line)
		if !ok {
			res.Skipped++
			continue
		}
		if err := validate.Struct(p); err != nil {
			res.Skipped++
			continue
		}
		res.Plants = append(res.Plants, p)
	}

	return res, nil
}

func parseRow(field func(string) string, line int) (models.PlantRecord, bool) {
	capacity, err := strconv.ParseFloat(field(colCapacity), 64)
	if err != nil {
		return models.PlantRecord{}, false
	}

	p := models.PlantRecord{
		ID:          field(colID),
		Name:        field(colName),
		Country:     field(colCountryLng),
		CountryCode: field(colCountry),
		Technology:  field(colFuel),
		CapacityMW:  capacity,
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("row-%d", line)
	}

	if y := field(colYear); y != "" {
		// years are stored as floats, e.g. "2011.0"
		if v, err := strconv.ParseFloat(y, 64); err == nil {
			p.CommissionYear = int(v)
		}
	}

	lat, latErr := strconv.ParseFloat(field(colLatitude), 64)
	lon, lonErr := strconv.ParseFloat(field(colLongitude), 64)
	if latErr == nil && lonErr == nil {
		p.Lat, p.Lon = lat, lon
		p.HasLocation = true
	}

	return p, true
}
