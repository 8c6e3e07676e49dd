package workflow

import (
	"math"
	"strconv"
	"strings"

	"github.com/jwalitptl/hms-api/internal/model"
)

// Static fee and cost tables. Pure lookups with deterministic fallback
// chains; no I/O.

const (
	defaultConsultationFee = 100.0
	defaultMedicationCost  = 2.0
	taxRate                = 0.10
)

// consultationFees is keyed by appointment type, then department. A
// missing department falls back to the type's "default" entry, a
// missing type to the global default.
var consultationFees = map[model.AppointmentType]map[string]float64{
	model.AppointmentTypeConsultation: {
		"Cardiology":   150,
		"Neurology":    160,
		"Orthopedics":  130,
		"Pediatrics":   110,
		"Dermatology":  120,
		"Oncology":     180,
		"Psychiatry":   140,
		"ENT":          105,
		"Gynecology":   125,
		"Urology":      135,
		"default":      100,
	},
	model.AppointmentTypeFollowUp: {
		"Cardiology":  90,
		"Neurology":   95,
		"Orthopedics": 80,
		"Pediatrics":  70,
		"Oncology":    110,
		"default":     60,
	},
	model.AppointmentTypeCheckup: {
		"Cardiology": 120,
		"default":    80,
	},
	model.AppointmentTypeEmergency: {
		"default": 250,
	},
}

// medicationCosts holds per-unit cost by medication name.
var medicationCosts = map[string]float64{
	"Paracetamol 500mg":     0.5,
	"Paracetamol 650mg":     0.6,
	"Ibuprofen 400mg":       0.8,
	"Aspirin 75mg":          0.4,
	"Amoxicillin 250mg":     2.5,
	"Amoxicillin 500mg":     3.8,
	"Azithromycin 500mg":    4.2,
	"Ciprofloxacin 500mg":   3.5,
	"Doxycycline 100mg":     2.8,
	"Metronidazole 400mg":   1.9,
	"Cetirizine 10mg":       0.6,
	"Loratadine 10mg":       0.7,
	"Omeprazole 20mg":       1.2,
	"Pantoprazole 40mg":     1.5,
	"Ranitidine 150mg":      0.9,
	"Metformin 500mg":       1.1,
	"Metformin 1000mg":      1.6,
	"Glimepiride 2mg":       1.4,
	"Insulin Glargine":      24.0,
	"Atorvastatin 10mg":     1.8,
	"Atorvastatin 20mg":     2.4,
	"Rosuvastatin 10mg":     2.6,
	"Amlodipine 5mg":        1.0,
	"Losartan 50mg":         1.3,
	"Telmisartan 40mg":      1.7,
	"Metoprolol 25mg":       1.2,
	"Salbutamol Inhaler":    8.5,
	"Budesonide Inhaler":    12.0,
	"Montelukast 10mg":      2.1,
	"Prednisolone 5mg":      0.8,
	"Levothyroxine 50mcg":   0.9,
	"Sertraline 50mg":       2.2,
	"Alprazolam 0.25mg":     1.1,
	"Tramadol 50mg":         1.6,
	"Diclofenac 50mg":       0.7,
	"Vitamin D3 60000IU":    1.5,
}

// GetConsultationFee resolves the fee for an appointment type and
// department with a two-level fallback: exact entry, the type's
// default, then the global default.
func GetConsultationFee(aptType model.AppointmentType, department string) float64 {
	byDept, ok := consultationFees[aptType]
	if !ok {
		return defaultConsultationFee
	}
	if fee, ok := byDept[department]; ok {
		return fee
	}
	if fee, ok := byDept["default"]; ok {
		return fee
	}
	return defaultConsultationFee
}

// GetMedicationCost returns the per-unit cost for a medication name,
// or the default cost when the name is unknown.
func GetMedicationCost(name string) float64 {
	if cost, ok := medicationCosts[name]; ok {
		return cost
	}
	return defaultMedicationCost
}

// ParseQuantity extracts the unit count from a descriptive quantity
// string such as "14 capsules" or "1 bottle". The count is the leading
// integer; anything unparsable counts as a single unit so billing
// never silently zeroes a line.
func ParseQuantity(quantity string) int {
	s := strings.TrimSpace(quantity)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// round2 rounds to two decimal places, the precision bills are stored at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
