package dto

type UpdateProgressRequest struct {
	TimeSpent      int `json:"time_spent" validate:"gte=0"`
	CompletedSteps int `json:"completed_steps" validate:"gte=0"`
}

func (r UpdateProgressRequest) Validate() error {
	return validate.Struct(r)
}

type CloseSessionRequest struct {
	TimeSpent      int `json:"time_spent" validate:"gte=0"`
	CompletedSteps int `json:"completed_steps" validate:"gte=0"`
}

func (r CloseSessionRequest) Validate() error {
	return validate.Struct(r)
}
