package models

import "time"

type DatasetRecord struct {
	ID         string
	Filename   string
	Columns    int
	Rows       int
	UploadedAt time.Time
}

type QueryRecord struct {
	ID         string
	DatasetID  string
	QueryText  string
	Response   string
	Intent     string
	ChartCount int
	LatencyMS  int
	CreatedAt  time.Time
}
