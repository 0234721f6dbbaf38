package dto

type RecordConsultationRequest struct {
	PatientID int64  `json:"patient_id" validate:"required,gt=0"`
	Disease   string `json:"disease" validate:"max=1000"`
	Medicine  string `json:"medicine" validate:"max=1000"`
	Remarks   string `json:"remarks" validate:"max=2000"`
	Outcome   string `json:"outcome" validate:"omitempty,oneof=completed skipped"`
}
