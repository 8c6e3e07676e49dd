package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hms-api/internal/model"
)

func TestGetConsultationFee(t *testing.T) {
	tests := []struct {
		name       string
		aptType    model.AppointmentType
		department string
		want       float64
	}{
		{"exact match", model.AppointmentTypeConsultation, "Cardiology", 150},
		{"another exact match", model.AppointmentTypeFollowUp, "Oncology", 110},
		{"unknown department falls back to type default", model.AppointmentTypeConsultation, "Radiology", 100},
		{"follow-up default", model.AppointmentTypeFollowUp, "Radiology", 60},
		{"emergency has only a default", model.AppointmentTypeEmergency, "Cardiology", 250},
		{"unknown type falls back to global default", model.AppointmentType("Walk-in"), "Cardiology", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetConsultationFee(tt.aptType, tt.department))
		})
	}
}

func TestGetMedicationCost(t *testing.T) {
	assert.Equal(t, 3.8, GetMedicationCost("Amoxicillin 500mg"))
	assert.Equal(t, 0.5, GetMedicationCost("Paracetamol 500mg"))
	assert.Equal(t, defaultMedicationCost, GetMedicationCost("Experimental Drug X"))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"14 capsules", 14},
		{"1 bottle", 1},
		{"30 tablets", 30},
		{"  7 days supply", 7},
		{"two packs", 1},
		{"", 1},
		{"0 units", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseQuantity(tt.in), "quantity %q", tt.in)
	}
}

func TestComputeBillTotals(t *testing.T) {
	bill := &model.Bill{
		Services: model.ServiceLines{{Name: "Consultation - Cardiology", Cost: 150}},
	}
	ComputeBillTotals(bill)

	assert.Equal(t, 150.0, bill.Subtotal)
	assert.Equal(t, 15.0, bill.Tax)
	assert.Equal(t, 165.0, bill.TotalAmount)
}

func TestComputeBillTotalsMedications(t *testing.T) {
	bill := &model.Bill{
		Medications: model.MedicationCharges{
			{Name: "Amoxicillin 500mg", Cost: 3.8, Quantity: 14},
		},
	}
	ComputeBillTotals(bill)

	assert.Equal(t, 53.2, bill.Subtotal)
	assert.Equal(t, 5.32, bill.Tax)
	assert.Equal(t, 58.52, bill.TotalAmount)
}

func TestComputeBillTotalsDiscount(t *testing.T) {
	bill := &model.Bill{
		Services: model.ServiceLines{{Name: "Check-up - General", Cost: 80}},
		Discount: 8,
	}
	ComputeBillTotals(bill)

	assert.Equal(t, 80.0, bill.Subtotal)
	assert.Equal(t, 8.0, bill.Tax)
	assert.Equal(t, 80.0, bill.TotalAmount)
}
