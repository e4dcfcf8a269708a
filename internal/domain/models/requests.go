package models

// Requests for the HTTP and Kafka entry points.

type SweepRequest struct {
	Strategy     string               `json:"strategy" validate:"required"`
	Coins        []string             `json:"coins" validate:"required,min=1,max=50,dive,required,symbol"`
	TimeRange    string               `json:"time_range" default:"24 Hours" validate:"required"`
	PositionSize float64              `json:"position_size" default:"100" validate:"gt=0"`
	Ranges       map[string][]float64 `json:"ranges,omitempty"`
	Persist      *bool                `json:"persist,omitempty"`
}

type SignalRequest struct {
	Coin     string `query:"coin" json:"coin" validate:"required,symbol"`
	Strategy string `query:"strategy" json:"strategy" validate:"required"`
}

type ParamsRequest struct {
	Coin     string `param:"coin" validate:"required,symbol"`
	Strategy string `param:"strategy" validate:"required"`
}

type SweepStatusRequest struct {
	ID string `param:"id" validate:"required"`
}
