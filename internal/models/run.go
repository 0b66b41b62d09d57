package models

import (
	"fmt"
	"time"
)

// RunRecord is a persisted sync run. Wraps a completed SyncReport with
// identity and timestamps for the run history store.
type RunRecord struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	report    SyncReport
}

// NewRunRecord creates a RunRecord from a completed report.
// The ID is assigned by the repository on Create.
func NewRunRecord(sequence int, report SyncReport) *RunRecord {
	now := time.Now()
	return &RunRecord{
		sequence:  sequence,
		createdAt: now,
		updatedAt: now,
		report:    report,
	}
}

func (r *RunRecord) ID() string           { return r.id }
func (r *RunRecord) CreatedAt() time.Time { return r.createdAt }
func (r *RunRecord) UpdatedAt() time.Time { return r.updatedAt }

func (r *RunRecord) Sequence() int      { return r.sequence }
func (r *RunRecord) Report() SyncReport { return r.report }
func (r *RunRecord) Mode() string       { return r.report.Mode }

func (r *RunRecord) SetID(id string)             { r.id = id }
func (r *RunRecord) SetSequence(seq int)         { r.sequence = seq }
func (r *RunRecord) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *RunRecord) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *RunRecord) SetReport(report SyncReport) { r.report = report }

// Validate checks that the record carries a usable report.
func (r *RunRecord) Validate() error {
	if r.report.RunID == "" {
		return fmt.Errorf("run record missing run ID")
	}
	if r.report.Mode == "" {
		return fmt.Errorf("run record missing mode")
	}
	return nil
}
