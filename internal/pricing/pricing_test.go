package pricing

import (
	"math"
	"testing"

	"github.com/diewo77/go-formations/validation"
)

const epsilon = 1e-6

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Fatalf("%s: got %v want %v", name, got, want)
	}
}

var testRates = Rates{Individual: 80, Group: 60}

func mustCompute(t *testing.T, in Input) Result {
	t.Helper()
	res, err := Compute(in, testRates)
	if err != nil {
		t.Fatalf("compute %+v: %v", in, err)
	}
	return res
}

func TestComputeIndividualScenario(t *testing.T) {
	res := mustCompute(t, Input{Mode: Individuel, Participants: 1, Hours: 35, TaxRate: 20})
	nearlyEqual(t, "subtotal", res.Subtotal, 2800)
	nearlyEqual(t, "totalHT", res.TotalHT, 2800)
	nearlyEqual(t, "montantTVA", res.VATAmount, 560)
	nearlyEqual(t, "totalTTC", res.TotalTTC, 3360)
	if res.HourlyRate != 80 || res.BilledParticipants != 1 {
		t.Fatalf("unexpected rate/billing %+v", res)
	}
}

func TestComputeGroupScenario(t *testing.T) {
	res := mustCompute(t, Input{Mode: Groupe, Participants: 4, Hours: 10, TaxRate: 20, CertificationFee: 500})
	nearlyEqual(t, "subtotal", res.Subtotal, 2400)
	nearlyEqual(t, "totalHT", res.TotalHT, 2900)
	nearlyEqual(t, "montantTVA", res.VATAmount, 580)
	nearlyEqual(t, "totalTTC", res.TotalTTC, 3480)
}

func TestIndividualIgnoresParticipants(t *testing.T) {
	one := mustCompute(t, Input{Mode: Individuel, Participants: 1, Hours: 35, TaxRate: 20})
	five := mustCompute(t, Input{Mode: Individuel, Participants: 5, Hours: 35, TaxRate: 20})
	nearlyEqual(t, "subtotal", five.Subtotal, one.Subtotal)
	nearlyEqual(t, "totalTTC", five.TotalTTC, one.TotalTTC)
}

func TestGroupScalesWithParticipants(t *testing.T) {
	one := mustCompute(t, Input{Mode: Groupe, Participants: 1, Hours: 10})
	two := mustCompute(t, Input{Mode: Groupe, Participants: 2, Hours: 10})
	nearlyEqual(t, "subtotal", two.Subtotal, 2*one.Subtotal)
}

func TestTotalsAddUp(t *testing.T) {
	for _, mode := range []Mode{Individuel, Groupe} {
		for _, p := range []int{1, 3, 17, 50} {
			for _, h := range []int{1, 7, 35, 2000} {
				for _, tva := range []float64{0, 5.5, 10, 20, 100} {
					for _, fee := range []float64{0, 99.99, 500, 10000} {
						res := mustCompute(t, Input{Mode: mode, Participants: p, Hours: h, TaxRate: tva, CertificationFee: fee})
						nearlyEqual(t, "HT", res.TotalHT, res.Subtotal+fee)
						nearlyEqual(t, "TTC", res.TotalTTC, res.TotalHT+res.TotalHT*tva/100)
						nearlyEqual(t, "TTC sum", res.TotalTTC, res.TotalHT+res.VATAmount)
					}
				}
			}
		}
	}
}

func TestComputeRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"zero participants", Input{Mode: Groupe, Participants: 0, Hours: 10, TaxRate: 20}, "participants"},
		{"too many participants", Input{Mode: Groupe, Participants: 51, Hours: 10}, "participants"},
		{"zero hours", Input{Mode: Individuel, Participants: 1, Hours: 0, TaxRate: 20}, "heures"},
		{"too many hours", Input{Mode: Individuel, Participants: 1, Hours: 2001}, "heures"},
		{"negative tva", Input{Mode: Individuel, Participants: 1, Hours: 10, TaxRate: -1}, "tva"},
		{"tva above 100", Input{Mode: Individuel, Participants: 1, Hours: 10, TaxRate: 100.5}, "tva"},
		{"negative fee", Input{Mode: Individuel, Participants: 1, Hours: 10, CertificationFee: -5}, "coutCertification"},
		{"fee too high", Input{Mode: Individuel, Participants: 1, Hours: 10, CertificationFee: 10000.01}, "coutCertification"},
		{"missing mode", Input{Participants: 1, Hours: 10}, "mode"},
		{"unknown mode", Input{Mode: "distanciel", Participants: 1, Hours: 10}, "mode"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Compute(c.in, testRates)
			v, ok := validation.AsError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, has := v[c.field]; !has {
				t.Fatalf("expected violation on %s, got %v", c.field, v)
			}
		})
	}
}

func TestComputeRejectsMissingRate(t *testing.T) {
	_, err := Compute(Input{Mode: Groupe, Participants: 2, Hours: 5}, Rates{Individual: 80})
	v, ok := validation.AsError(err)
	if !ok || v["tauxHoraire"] != "must_be_positive" {
		t.Fatalf("expected rate violation, got %v", err)
	}
}

func TestNewInput(t *testing.T) {
	in, err := NewInput("group", 4, 10, 20, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Mode != Groupe || in.Participants != 4 || in.Hours != 10 {
		t.Fatalf("unexpected input %+v", in)
	}

	_, err = NewInput("", 2.5, 0, -1, 0)
	v, ok := validation.AsError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := map[string]string{"mode": "required", "participants": "must_be_integer", "heures": "out_of_range", "tva": "out_of_range"}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: expected %s got %s", field, code, v[field])
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"individuel": Individuel, "Individual": Individuel, " groupe ": Groupe, "group": Groupe}
	for in, want := range cases {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Errorf("ParseMode(%q) = %q,%v", in, got, ok)
		}
	}
	if _, ok := ParseMode("intra"); ok {
		t.Fatalf("intra is not a mode")
	}
}
