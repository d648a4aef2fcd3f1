package services

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mkravets/tradesim/internal/models"
)

// ErrUnusableTable marks a table payload without a recognizable price column.
var ErrUnusableTable = errors.New("table payload has no usable price column")

// millisecond timestamps start around 2001-09-09 when read as seconds; any
// parsed integer above this is treated as milliseconds.
const millisThreshold = 1e12

// ParseTableSeries converts a heterogeneous table payload into the canonical
// chart series. The header row assigns column roles by keyword; rows whose
// time or price cell does not parse are skipped. Output is sorted ascending
// by timestamp.
func ParseTableSeries(rows [][]string) (models.ChartSeries, error) {
	if len(rows) < 2 {
		return models.ChartSeries{}, ErrUnusableTable
	}

	timeCol, priceCol, volumeCol := detectColumns(rows[0])
	if priceCol < 0 {
		return models.ChartSeries{}, ErrUnusableTable
	}

	type point struct {
		ts     int64
		close  float64
		volume float64
	}

	var points []point
	for _, row := range rows[1:] {
		if priceCol >= len(row) {
			continue
		}

		var ts int64
		if timeCol >= 0 && timeCol < len(row) {
			parsed, err := parseTableTime(row[timeCol])
			if err != nil {
				continue
			}
			ts = parsed
		}

		closePrice, err := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64)
		if err != nil {
			continue
		}

		var volume float64
		if volumeCol >= 0 && volumeCol < len(row) {
			volume, _ = strconv.ParseFloat(strings.TrimSpace(row[volumeCol]), 64)
		}

		points = append(points, point{ts: ts, close: closePrice, volume: volume})
	}

	if len(points) == 0 {
		return models.ChartSeries{}, ErrUnusableTable
	}

	sort.Slice(points, func(i, j int) bool { return points[i].ts < points[j].ts })

	var series models.ChartSeries
	for _, p := range points {
		series.Timestamps = append(series.Timestamps, p.ts)
		series.Close = append(series.Close, p.close)
		series.Volume = append(series.Volume, p.volume)
	}
	return series, nil
}

// detectColumns assigns column roles from the header row by keyword match.
// Returns -1 for any role it cannot place.
func detectColumns(header []string) (timeCol, priceCol, volumeCol int) {
	timeCol, priceCol, volumeCol = -1, -1, -1

	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case timeCol < 0 && containsAny(name, "time", "date", "timestamp"):
			timeCol = i
		case priceCol < 0 && containsAny(name, "price", "close", "last", "value"):
			priceCol = i
		case volumeCol < 0 && containsAny(name, "volume", "vol"):
			volumeCol = i
		}
	}
	return timeCol, priceCol, volumeCol
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// parseTableTime accepts unix seconds, unix milliseconds, and the common
// date layouts upstream tables use.
func parseTableTime(cell string) (int64, error) {
	cell = strings.TrimSpace(cell)

	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		if n > millisThreshold {
			return n / 1000, nil
		}
		return n, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, errors.New("unrecognized time value")
}
