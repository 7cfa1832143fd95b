package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenericFor(t *testing.T) {
	cases := []struct {
		name    string
		generic string
		ok      bool
	}{
		{"DOLO-650 tab", "Paracetamol", true},
		{"Tab. Dolo 650", "Paracetamol", true},
		{"Cap Omez 20", "Omeprazole", true},
		{"Syp. Calpol", "Paracetamol", true},
		{"Augmentin 625", "Amoxicillin + Clavulanic Acid", true},
		{"Paracetamol", "", false},
		{"Tab.", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		g, ok := GenericFor(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.generic, g, tc.name)
	}
}

func TestSameDrug(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"paracetamol", "Paracetamol", true},
		{"Paracetamol 650mg", "Paracetamol", true},
		{"Amoxicillin and Clavulanic Acid", "Amoxicillin + Clavulanic Acid", true},
		{"Paracetamol + Ibuprofen", "Ibuprofen + Paracetamol", true},
		{"Amoxycillin + Clavulanic Acid", "Amoxicillin + Clavulanic Acid", true},
		{"Amoxicillin + Clavulanate Potassium", "Amoxicillin + Clavulanic Acid", true},
		{"Acetaminophen", "Paracetamol", true},
		{"Metformin + Glimepiride", "Metformin", false},
		{"Crocin", "Paracetamol", false},
		{"", "Paracetamol", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sameDrug(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}
