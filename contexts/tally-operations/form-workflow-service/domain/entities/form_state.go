package entities

type FormState string

const (
	FormStateUnsubmitted    FormState = "unsubmitted"
	FormStateIntake         FormState = "intake"
	FormStateDataEntry1     FormState = "data_entry_1"
	FormStateDataEntry2     FormState = "data_entry_2"
	FormStateCorrection     FormState = "correction"
	FormStateQualityControl FormState = "quality_control"
	// FormStateArchiving has been removed from the transition table but stays
	// in the enum for compatibility with old databases.
	FormStateArchiving FormState = "archiving"
	FormStateArchived  FormState = "archived"
	FormStateClearance FormState = "clearance"
	FormStateAudit     FormState = "audit"
)

func IsKnownFormState(value FormState) bool {
	switch value {
	case FormStateUnsubmitted, FormStateIntake, FormStateDataEntry1,
		FormStateDataEntry2, FormStateCorrection, FormStateQualityControl,
		FormStateArchiving, FormStateArchived, FormStateClearance,
		FormStateAudit:
		return true
	default:
		return false
	}
}

type EntryVersion string

const (
	EntryVersionDataEntry1 EntryVersion = "data_entry_1"
	EntryVersionDataEntry2 EntryVersion = "data_entry_2"
	EntryVersionFinal      EntryVersion = "final"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderUnspecified Gender = ""
)
