package model

import "time"

// InspectionReport represents a condition report in the
// `inspection_reports` table. Reports are issued by verified
// inspectors and are immutable after creation except for the single
// owner-approval bit, which only the current owner of the referenced
// vehicle may set. ReportID is chosen by the inspector; the uniqueness
// key is (vehicle, inspector, report_id).
type InspectionReport struct {
	ID                 uint64    // inspection_reports.id
	ReportID           uint64    // inspection_reports.report_id
	VehicleID          uint64    // inspection_reports.vehicle_id
	InspectorAccountID uint64    // inspection_reports.inspector_account_id
	OwnerAccountID     uint64    // inspection_reports.owner_account_id (owner snapshot at issue time)
	ReportDate         time.Time // inspection_reports.report_date
	OverallCondition   uint8     // 1-10
	EngineCondition    uint8     // 1-10
	BodyCondition      uint8     // 1-10
	FullReportURI      string    // inspection_reports.full_report_uri
	ReportSummary      string    // inspection_reports.report_summary
	Notes              string    // inspection_reports.notes
	ApprovedByOwner    bool      // inspection_reports.approved_by_owner
}

// ConformityReport represents a regulatory conformity report in the
// `conformity_reports` table. Structurally parallel to the inspection
// flow: issued by verified conformity experts, approved once by the
// vehicle's current owner.
type ConformityReport struct {
	ID               uint64    // conformity_reports.id
	ReportID         uint64    // conformity_reports.report_id
	VehicleID        uint64    // conformity_reports.vehicle_id
	ExpertAccountID  uint64    // conformity_reports.expert_account_id
	OwnerAccountID   uint64    // conformity_reports.owner_account_id (owner snapshot at issue time)
	ReportDate       time.Time // conformity_reports.report_date
	ConformityStatus bool      // conformity_reports.conformity_status
	Modifications    string    // conformity_reports.modifications
	MinesStamp       string    // conformity_reports.mines_stamp
	FullReportURI    string    // conformity_reports.full_report_uri
	Notes            string    // conformity_reports.notes
	AcceptedByOwner  bool      // conformity_reports.accepted_by_owner
}
