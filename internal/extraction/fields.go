package extraction

// Field is one named zoning-compliance attribute tracked per document.
type Field string

const (
	FieldLocationWithinBuildingZone  Field = "location_within_building_zone"
	FieldBuildingUseType             Field = "building_use_type"
	FieldBuildingStyle               Field = "building_style"
	FieldGRZ                         Field = "grz"
	FieldGFZ                         Field = "gfz"
	FieldBuildingHeight              Field = "building_height"
	FieldNumberOfFloors              Field = "number_of_floors"
	FieldRoofShape                   Field = "roof_shape"
	FieldDormers                     Field = "dormers"
	FieldRoofOrientation             Field = "roof_orientation"
	FieldParkingSpaces               Field = "parking_spaces"
	FieldOutdoorSpace                Field = "outdoor_space"
	FieldSetbackArea                 Field = "setback_area"
	FieldSetbackRelevantFillingWork  Field = "setback_relevant_filling_work"
	FieldDeviationsFromBPlan         Field = "deviations_from_b_plan"
	FieldExemptionsRequired          Field = "exemptions_required"
	FieldSpeciesProtectionCheck      Field = "species_protection_check"
	FieldComplianceWithZoningRules   Field = "compliance_with_zoning_rules"
	FieldComplianceWithBuildingCodes Field = "compliance_with_building_codes"
)

// AllFields lists every tracked field in catalog order. A comparison is only
// meaningful between two attribute sets sharing this schema.
var AllFields = []Field{
	FieldLocationWithinBuildingZone,
	FieldBuildingUseType,
	FieldBuildingStyle,
	FieldGRZ,
	FieldGFZ,
	FieldBuildingHeight,
	FieldNumberOfFloors,
	FieldRoofShape,
	FieldDormers,
	FieldRoofOrientation,
	FieldParkingSpaces,
	FieldOutdoorSpace,
	FieldSetbackArea,
	FieldSetbackRelevantFillingWork,
	FieldDeviationsFromBPlan,
	FieldExemptionsRequired,
	FieldSpeciesProtectionCheck,
	FieldComplianceWithZoningRules,
	FieldComplianceWithBuildingCodes,
}

// fieldDescriptions drives the per-field extraction instruction. Values name
// exactly what to read off a drawing or text block, so the model is not
// tempted to infer adjacent facts.
var fieldDescriptions = map[Field]string{
	FieldLocationWithinBuildingZone:  "whether the project site lies inside a designated building zone (Baugebiet) and which zone it is",
	FieldBuildingUseType:             "the intended use type of the building (residential, commercial, mixed use, agricultural)",
	FieldBuildingStyle:               "the construction style of the building (detached, semi-detached, row house, open or closed construction)",
	FieldGRZ:                         "the site coverage ratio GRZ (Grundflächenzahl), including the calculated value if stated",
	FieldGFZ:                         "the floor area ratio GFZ (Geschossflächenzahl), including the calculated value if stated",
	FieldBuildingHeight:              "the building height, including eaves height (Traufhöhe) and ridge height (Firsthöhe) with units",
	FieldNumberOfFloors:              "the number of full floors (Vollgeschosse), including attic or basement levels if marked",
	FieldRoofShape:                   "the roof shape (gable, hip, flat, mono-pitch) and the roof pitch in degrees if stated",
	FieldDormers:                     "whether dormers are present, and their number, width and placement",
	FieldRoofOrientation:             "the ridge orientation of the roof relative to the street or compass direction",
	FieldParkingSpaces:               "the number and placement of parking spaces (Stellplätze) and garages or carports",
	FieldOutdoorSpace:                "outdoor and green spaces: terraces, gardens, sealed surfaces and their areas",
	FieldSetbackArea:                 "the setback areas (Abstandsflächen) to plot boundaries with distances and units",
	FieldSetbackRelevantFillingWork:  "any filling or excavation work (Aufschüttungen, Abgrabungen) that affects setback calculations",
	FieldDeviationsFromBPlan:         "any deviations from the development plan explicitly noted in the drawings or text",
	FieldExemptionsRequired:          "any exemptions (Befreiungen) or special permits the project applies for",
	FieldSpeciesProtectionCheck:      "any notes on species protection (Artenschutz) assessments or required surveys",
	FieldComplianceWithZoningRules:   "any statements about conformity with zoning rules (Bauplanungsrecht)",
	FieldComplianceWithBuildingCodes: "any statements about conformity with the building code (Bauordnungsrecht), such as fire safety or escape routes",
}

// Description returns the extraction subject for a field.
func (f Field) Description() string {
	return fieldDescriptions[f]
}

// ValueUnavailable is the sentinel recorded for a field whose pipeline failed
// when the caller opted into best-effort assembly.
const ValueUnavailable = "nicht verfügbar"

// AttributeSet is the full collection of reconciled fields for one document,
// plus the free-form narrative summary parsed from the analysis pass. After a
// successful assembly every Field key is present, even when its value denotes
// "not found".
type AttributeSet struct {
	Fields  map[Field]string  `json:"fields"`
	Summary map[string]string `json:"summary,omitempty"`
}
