package model

// Composition is a spectrometer reading in weight percent.
type Composition struct {
	C  *float64 `json:"c,omitempty" validate:"omitempty,gte=0,lte=100"`
	Si *float64 `json:"si,omitempty" validate:"omitempty,gte=0,lte=100"`
	Mn *float64 `json:"mn,omitempty" validate:"omitempty,gte=0,lte=100"`
	P  *float64 `json:"p,omitempty" validate:"omitempty,gte=0,lte=100"`
	S  *float64 `json:"s,omitempty" validate:"omitempty,gte=0,lte=100"`
	Mg *float64 `json:"mg,omitempty" validate:"omitempty,gte=0,lte=100"`
	Cu *float64 `json:"cu,omitempty" validate:"omitempty,gte=0,lte=100"`
	Cr *float64 `json:"cr,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ProcessLog is one moulding and pouring entry on a DISA line.
type ProcessLog struct {
	Meta
	Date               Date        `json:"date" validate:"required"`
	Disa               string      `json:"disa" validate:"required,oneof=DISA-1 DISA-2 DISA-3 DISA-4"`
	PartName           string      `json:"partName" validate:"required,max=100"`
	DateCode           string      `json:"dateCode" validate:"required,max=20"`
	HeatCode           string      `json:"heatCode" validate:"required,max=20"`
	QuantityOfMoulds   *int        `json:"quantityOfMoulds" validate:"required,min=1"`
	MetalComposition   Composition `json:"metalComposition"`
	TimeOfPouring      string      `json:"timeOfPouring,omitempty" validate:"clock"`
	PouringTemperature *float64    `json:"pouringTemperature" validate:"required,gte=1000,lte=1600"`
	PPCode             string      `json:"ppCode,omitempty" validate:"max=50"`
	TreatmentNo        string      `json:"treatmentNo,omitempty" validate:"max=50"`
	FCNo               string      `json:"fcNo,omitempty" validate:"max=50"`
	HeatNo             string      `json:"heatNo,omitempty" validate:"max=50"`
	ConNo              string      `json:"conNo,omitempty" validate:"max=50"`
	TappingTime        string      `json:"tappingTime,omitempty" validate:"clock"`
	CorrectiveAddition *float64    `json:"correctiveAddition,omitempty" validate:"omitempty,gte=0"`
	TappingWt          *float64    `json:"tappingWt,omitempty" validate:"omitempty,gte=0"`
	Mg                 *float64    `json:"mg,omitempty" validate:"omitempty,gte=0"`
	ResMgConvertor     *float64    `json:"resMgConvertor,omitempty" validate:"omitempty,gte=0"`
	RecOfMg            *float64    `json:"recOfMg,omitempty" validate:"omitempty,gte=0,lte=100"`
	StreamInoculant    *float64    `json:"streamInoculant,omitempty" validate:"omitempty,gte=0"`
	PTime              *float64    `json:"pTime,omitempty" validate:"omitempty,gte=0"`
	Remarks            string      `json:"remarks,omitempty" validate:"max=500"`
}

// Charge is the furnace charge mix in kilograms.
type Charge struct {
	SteelScrap    *float64 `json:"steelScrap,omitempty" validate:"omitempty,gte=0"`
	PigIron       *float64 `json:"pigIron,omitempty" validate:"omitempty,gte=0"`
	CastIronScrap *float64 `json:"castIronScrap,omitempty" validate:"omitempty,gte=0"`
	Returns       *float64 `json:"returns,omitempty" validate:"omitempty,gte=0"`
	FeSi          *float64 `json:"feSi,omitempty" validate:"omitempty,gte=0"`
	FeMn          *float64 `json:"feMn,omitempty" validate:"omitempty,gte=0"`
	SiC           *float64 `json:"siC,omitempty" validate:"omitempty,gte=0"`
	Graphite      *float64 `json:"graphite,omitempty" validate:"omitempty,gte=0"`
	Cu            *float64 `json:"cu,omitempty" validate:"omitempty,gte=0"`
}

type Tapping struct {
	Time     string   `json:"time,omitempty" validate:"clock"`
	TempC    *float64 `json:"tempC,omitempty" validate:"omitempty,gte=1000,lte=1700"`
	MetalKgs *float64 `json:"metalKgs,omitempty" validate:"omitempty,gte=0"`
}

// MeltingLog is one induction furnace heat.
type MeltingLog struct {
	Meta
	Date                  Date     `json:"date" validate:"required"`
	HeatNo                string   `json:"heatNo" validate:"required,max=50"`
	Shift                 string   `json:"shift" validate:"required,oneof=A B C"`
	FurnaceNo             string   `json:"furnaceNo" validate:"required,max=20"`
	Panel                 string   `json:"panel,omitempty" validate:"max=20"`
	CumulativeLiquidMetal *float64 `json:"cumulativeLiquidMetal,omitempty" validate:"omitempty,gte=0"`
	InitialKWHr           *float64 `json:"initialKWHr,omitempty" validate:"omitempty,gte=0"`
	FinalKWHr             *float64 `json:"finalKWHr,omitempty" validate:"omitempty,gte=0"`
	TotalUnits            *float64 `json:"totalUnits,omitempty" validate:"omitempty,gte=0"`
	CumulativeUnits       *float64 `json:"cumulativeUnits,omitempty" validate:"omitempty,gte=0"`
	Charge                Charge   `json:"charge"`
	Tapping               Tapping  `json:"tapping"`
	Remarks               string   `json:"remarks,omitempty" validate:"max=500"`
}

func (m *MeltingLog) Check() []FieldError {
	if m.InitialKWHr != nil && m.FinalKWHr != nil && *m.FinalKWHr < *m.InitialKWHr {
		return []FieldError{{Field: "finalKWHr", Message: "must be greater than or equal to initialKWHr"}}
	}
	return nil
}

// Additions are the ladle additions in the cupola holder, in kilograms.
type Additions struct {
	CPC    *float64 `json:"cpc,omitempty" validate:"omitempty,gte=0"`
	MFeSl  *float64 `json:"mFeSl,omitempty" validate:"omitempty,gte=0"`
	FeMn   *float64 `json:"feMn,omitempty" validate:"omitempty,gte=0"`
	SiC    *float64 `json:"siC,omitempty" validate:"omitempty,gte=0"`
	PureMg *float64 `json:"pureMg,omitempty" validate:"omitempty,gte=0"`
}

type HolderTapping struct {
	ActualTime  string   `json:"actualTime,omitempty" validate:"clock"`
	TappingTime string   `json:"tappingTime,omitempty" validate:"clock"`
	TempC       *float64 `json:"tempC,omitempty" validate:"omitempty,gte=1000,lte=1700"`
	MetalKgs    *float64 `json:"metalKgs,omitempty" validate:"omitempty,gte=0"`
}

type Pouring struct {
	DisaLine string `json:"disaLine,omitempty" validate:"omitempty,oneof=DISA-1 DISA-2 DISA-3 DISA-4"`
	IndFur   string `json:"indFur,omitempty" validate:"max=20"`
	BailNo   string `json:"bailNo,omitempty" validate:"max=20"`
}

// CupolaHolderLog is one tap from the cupola holder.
type CupolaHolderLog struct {
	Meta
	Date      Date          `json:"date" validate:"required"`
	Shift     string        `json:"shift" validate:"required,oneof=A B C"`
	HolderNo  string        `json:"holderNo" validate:"required,max=20"`
	HeatNo    string        `json:"heatNo" validate:"required,max=50"`
	Additions Additions     `json:"additions"`
	Tapping   HolderTapping `json:"tapping"`
	Pouring   Pouring       `json:"pouring"`
	Remarks   string        `json:"remarks,omitempty" validate:"max=500"`
}
