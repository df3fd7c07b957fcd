package model

// ImpactTest is a Charpy impact test on a specimen cut from a casting.
type ImpactTest struct {
	Meta
	DateOfInspection Date     `json:"dateOfInspection" validate:"required"`
	PartName         string   `json:"partName" validate:"required,max=100"`
	DateCode         string   `json:"dateCode" validate:"required,max=20"`
	HeatCode         string   `json:"heatCode" validate:"required,max=20"`
	Temp             *float64 `json:"temp" validate:"required,gte=-100,lte=100"`
	Energy           *float64 `json:"energy" validate:"required,gte=0"`
	ObservedValue    *float64 `json:"observedValue,omitempty" validate:"omitempty,gte=0"`
	Remarks          string   `json:"remarks,omitempty" validate:"max=500"`
}

// TensileTest records a full-size tensile bar test.
type TensileTest struct {
	Meta
	DateOfInspection Date     `json:"dateOfInspection" validate:"required"`
	Item             string   `json:"item" validate:"required,max=100"`
	DateCode         string   `json:"dateCode" validate:"required,max=20"`
	HeatCode         string   `json:"heatCode" validate:"required,max=20"`
	Dia              *float64 `json:"dia" validate:"required,gt=0"`
	Lo               *float64 `json:"lo" validate:"required,gt=0"`
	Li               *float64 `json:"li,omitempty" validate:"omitempty,gte=0"`
	BreakingLoad     *float64 `json:"breakingLoad" validate:"required,gt=0"`
	YieldLoad        *float64 `json:"yieldLoad,omitempty" validate:"omitempty,gte=0"`
	UTS              *float64 `json:"uts,omitempty" validate:"omitempty,gte=0"`
	YS               *float64 `json:"ys,omitempty" validate:"omitempty,gte=0"`
	Elongation       *float64 `json:"elongation,omitempty" validate:"omitempty,gte=0,lte=100"`
	TestedBy         string   `json:"testedBy,omitempty" validate:"max=100"`
	Remarks          string   `json:"remarks,omitempty" validate:"max=500"`
}

func (t *TensileTest) Check() []FieldError {
	if t.YieldLoad != nil && t.BreakingLoad != nil && *t.YieldLoad > *t.BreakingLoad {
		return []FieldError{{Field: "yieldLoad", Message: "must not exceed breakingLoad"}}
	}
	return nil
}

// MicroTensileTest records a sub-size tensile test taken from a DISA line.
type MicroTensileTest struct {
	Meta
	DateOfInspection Date     `json:"dateOfInspection" validate:"required"`
	Disa             string   `json:"disa" validate:"required,oneof=DISA-1 DISA-2 DISA-3 DISA-4"`
	Item             string   `json:"item" validate:"required,max=100"`
	DateCode         string   `json:"dateCode,omitempty" validate:"max=20"`
	HeatCode         string   `json:"heatCode" validate:"required,max=20"`
	BarDia           *float64 `json:"barDia" validate:"required,gt=0"`
	GaugeLength      *float64 `json:"gaugeLength" validate:"required,gt=0"`
	MaxLoad          *float64 `json:"maxLoad" validate:"required,gt=0"`
	MinLoad          *float64 `json:"minLoad,omitempty" validate:"omitempty,gte=0"`
	TensileStrength  *float64 `json:"tensileStrength,omitempty" validate:"omitempty,gte=0"`
	YieldStrength    *float64 `json:"yieldStrength,omitempty" validate:"omitempty,gte=0"`
	Elongation       *float64 `json:"elongation,omitempty" validate:"omitempty,gte=0,lte=100"`
	TestedBy         string   `json:"testedBy,omitempty" validate:"max=100"`
	Remarks          string   `json:"remarks,omitempty" validate:"max=500"`
}

func (t *MicroTensileTest) Check() []FieldError {
	if t.MinLoad != nil && t.MaxLoad != nil && *t.MinLoad > *t.MaxLoad {
		return []FieldError{{Field: "minLoad", Message: "must not exceed maxLoad"}}
	}
	return nil
}
