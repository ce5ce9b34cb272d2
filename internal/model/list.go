package model

// PatientList is a named, user-owned worklist.
type PatientList struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsDefault   bool    `json:"is_default"`
	SortOrder   int64   `json:"sort_order"`
}

// PatientListColumn configures one column of a worklist grid.
type PatientListColumn struct {
	ID          int64   `json:"id"`
	ListID      int64   `json:"list_id"`
	ColumnKey   string  `json:"column_key"`
	ColumnLabel string  `json:"column_label"`
	ColumnType  *string `json:"column_type,omitempty"`
	IsVisible   bool    `json:"is_visible"`
	SortOrder   int64   `json:"sort_order"`
	Width       *int64  `json:"width,omitempty"`
}

// PatientListMember is the join row between a list and a patient.
type PatientListMember struct {
	ID        int64   `json:"id"`
	ListID    int64   `json:"list_id"`
	PatientID int64   `json:"patient_id"`
	AddedAt   string  `json:"added_at"`
	Notes     *string `json:"notes,omitempty"`
}

// PatientListWithPatients is a list with its columns and member patients.
type PatientListWithPatients struct {
	List     PatientList         `json:"list"`
	Columns  []PatientListColumn `json:"columns"`
	Patients []Patient           `json:"patients"`
}

// ColumnOption describes a selectable worklist column.
type ColumnOption struct {
	Key            string
	Label          string
	Type           string
	DefaultVisible bool
}

// AvailableColumns is the catalogue of worklist columns, in display order.
var AvailableColumns = []ColumnOption{
	{Key: "name", Label: "Name", Type: "text", DefaultVisible: true},
	{Key: "dob", Label: "DOB", Type: "date", DefaultVisible: true},
	{Key: "age", Label: "Age", Type: "computed", DefaultVisible: false},
	{Key: "sex", Label: "Sex", Type: "text", DefaultVisible: true},
	{Key: "gender", Label: "Gender", Type: "text", DefaultVisible: false},
	{Key: "phone", Label: "Phone", Type: "text", DefaultVisible: true},
	{Key: "email", Label: "Email", Type: "text", DefaultVisible: false},
	{Key: "address", Label: "Address", Type: "text", DefaultVisible: false},
	{Key: "last_visit", Label: "Last Visit", Type: "date", DefaultVisible: true},
	{Key: "next_appointment", Label: "Next Appt", Type: "date", DefaultVisible: true},
	{Key: "primary_diagnosis", Label: "Primary Dx", Type: "text", DefaultVisible: true},
	{Key: "insurance_provider", Label: "Insurance", Type: "text", DefaultVisible: false},
	{Key: "preferred_pharmacy", Label: "Pharmacy", Type: "text", DefaultVisible: false},
	{Key: "room", Label: "Room", Type: "text", DefaultVisible: false},
	{Key: "attending", Label: "Attending", Type: "text", DefaultVisible: false},
	{Key: "notes", Label: "Notes", Type: "text", DefaultVisible: false},
}

// DefaultColumns builds the column set a new list starts with.
func DefaultColumns(listID int64) []PatientListColumn {
	cols := make([]PatientListColumn, 0, len(AvailableColumns))
	for i, opt := range AvailableColumns {
		typ := opt.Type
		cols = append(cols, PatientListColumn{
			ListID:      listID,
			ColumnKey:   opt.Key,
			ColumnLabel: opt.Label,
			ColumnType:  &typ,
			IsVisible:   opt.DefaultVisible,
			SortOrder:   int64(i),
		})
	}
	return cols
}
