// Package fires implements the wildfire proximity search (§4.C): selecting
// covering data sources, loading their perimeter shapefiles, computing
// distance and bearing, and applying the status/size filter pipeline.
package fires

// FieldMapping declares how one normalized field is read from a raw
// perimeter shapefile row, with an optional named transform (e.g.
// "acres_to_hectares", grounded in original_source/app/fires.py's
// TRANSFORMS registry).
type FieldMapping struct {
	RawField  string
	Transform string
}

// AuxAPI is an optional enrichment call a DataSource can declare: the URL
// is templated with the row's own fields, and its JSON response fields
// are merged by name onto the normalized record. Per spec §9's Open
// Questions, templated fields are restricted to a printable allowlist
// before substitution to prevent breaking out of the URL.
type AuxAPI struct {
	URLTemplate string
	Fields      map[string]FieldMapping
}

// DataSource describes one wildfire perimeter source: BC, AB, US, CA, etc.
type DataSource struct {
	Name             string
	ShapefileDir     string
	FilenameTemplate string // contains a "{DATE}" placeholder
	Fields           map[string]FieldMapping
	StatusMap        map[string]string // active/managed/controlled/out -> raw status string
	Aux              *AuxAPI
}
