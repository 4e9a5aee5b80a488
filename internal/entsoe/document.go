package entsoe

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

// ErrNoData is returned when the platform has nothing for the requested window
var ErrNoData = errors.New("no matching data found")

// AcknowledgementError carries the reason of a rejected query
type AcknowledgementError struct {
	Code string
	Text string
}

func (e *AcknowledgementError) Error() string {
	return fmt.Sprintf("request rejected (reason %s): %s", e.Code, e.Text)
}

// Unwrap lets errors.Is(err, ErrNoData) match reason 999
func (e *AcknowledgementError) Unwrap() error {
	if e.Code == "999" {
		return ErrNoData
	}
	return nil
}

type glMarketDocument struct {
	XMLName    xml.Name     `xml:"GL_MarketDocument"`
	TimeSeries []timeSeries `xml:"TimeSeries"`
}

type timeSeries struct {
	MRID      string   `xml:"mRID"`
	InDomain  string   `xml:"inBiddingZone_Domain.mRID"`
	OutDomain string   `xml:"outBiddingZone_Domain.mRID"`
	Unit      string   `xml:"quantity_Measure_Unit.name"`
	CurveType string   `xml:"curveType"`
	PSRType   string   `xml:"MktPSRType>psrType"`
	Periods   []period `xml:"Period"`
}

type period struct {
	Interval struct {
		Start string `xml:"start"`
		End   string `xml:"end"`
	} `xml:"timeInterval"`
	Resolution string  `xml:"resolution"`
	Points     []point `xml:"Point"`
}

type point struct {
	Position int     `xml:"position"`
	Quantity float64 `xml:"quantity"`
}

type acknowledgementDocument struct {
	Reasons []struct {
		Code string `xml:"code"`
		Text string `xml:"text"`
	} `xml:"Reason"`
}

// curveVariableBlocks marks series where omitted positions repeat the previous value
const curveVariableBlocks = "A03"

// ParseGenerationDocument converts an A75 response into generation records for country.
// Only actual generation series (inBiddingZone) are kept; consumption series are dropped.
func ParseGenerationDocument(country string, body []byte) ([]models.GenerationRecord, error) {
	root, err := rootElement(body)
	if err != nil {
		return nil, err
	}

	switch root {
	case "GL_MarketDocument":
	case "Acknowledgement_MarketDocument":
		return nil, parseAcknowledgement(body)
	default:
		return nil, fmt.Errorf("unexpected document type: %s", root)
	}

	var doc glMarketDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding generation document: %w", err)
	}

	var records []models.GenerationRecord
	for _, ts := range doc.TimeSeries {
		if ts.InDomain == "" {
			continue
		}

		unit := ts.Unit
		if unit == "" {
			unit = "MAW"
		}
		factor, err := UnitFactor(unit)
		if err != nil {
			return nil, fmt.Errorf("time series %s: %w", ts.MRID, err)
		}

		source := PSRName(ts.PSRType)
		for _, p := range ts.Periods {
			points, err := expandPeriod(p, ts.CurveType == curveVariableBlocks)
			if err != nil {
				return nil, fmt.Errorf("time series %s: %w", ts.MRID, err)
			}
			for _, pt := range points {
				records = append(records, models.GenerationRecord{
					Country:   country,
					Source:    source,
					Timestamp: pt.at,
					PowerMW:   pt.value * factor,
				})
			}
		}
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

type timedValue struct {
	at    time.Time
	value float64
}

func expandPeriod(p period, fillForward bool) ([]timedValue, error) {
	start, err := parseTime(p.Interval.Start)
	if err != nil {
		return nil, fmt.Errorf("parsing period start: %w", err)
	}
	end, err := parseTime(p.Interval.End)
	if err != nil {
		return nil, fmt.Errorf("parsing period end: %w", err)
	}
	step, err := ParseResolution(p.Resolution)
	if err != nil {
		return nil, err
	}

	slots := int(end.Sub(start) / step)
	if slots <= 0 {
		return nil, fmt.Errorf("empty period %s..%s", p.Interval.Start, p.Interval.End)
	}

	byPosition := make(map[int]float64, len(p.Points))
	for _, pt := range p.Points {
		if pt.Position < 1 || pt.Position > slots {
			return nil, fmt.Errorf("point position %d outside period of %d slots", pt.Position, slots)
		}
		byPosition[pt.Position] = pt.Quantity
	}

	out := make([]timedValue, 0, slots)
	var last float64
	var seen bool
	for pos := 1; pos <= slots; pos++ {
		v, ok := byPosition[pos]
		switch {
		case ok:
			last, seen = v, true
		case fillForward && seen:
			v = last
		default:
			continue
		}
		out = append(out, timedValue{at: start.Add(time.Duration(pos-1) * step), value: v})
	}
	return out, nil
}

// ParseResolution parses the ISO 8601 durations used by the platform (PT15M, PT60M, P1D, ...)
func ParseResolution(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var (
		num  string
		unit time.Duration
	)
	switch {
	case strings.HasPrefix(s, "PT") && strings.HasSuffix(s, "M"):
		num, unit = s[2:len(s)-1], time.Minute
	case strings.HasPrefix(s, "PT") && strings.HasSuffix(s, "H"):
		num, unit = s[2:len(s)-1], time.Hour
	case strings.HasPrefix(s, "P") && strings.HasSuffix(s, "D"):
		num, unit = s[1:len(s)-1], 24*time.Hour
	default:
		return 0, fmt.Errorf("unsupported resolution: %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported resolution: %q", s)
	}
	return time.Duration(n) * unit, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02T15:04Z", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time: %q", s)
}

func rootElement(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("reading document: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

func parseAcknowledgement(body []byte) error {
	var ack acknowledgementDocument
	if err := xml.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("decoding acknowledgement: %w", err)
	}
	if len(ack.Reasons) == 0 {
		return &AcknowledgementError{Code: "unknown", Text: "acknowledgement without reason"}
	}
	return &AcknowledgementError{Code: ack.Reasons[0].Code, Text: strings.TrimSpace(ack.Reasons[0].Text)}
}
