package services_test

import (
	"testing"

	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/services"
)

func TestApplyFields_NewSupplyPoint(t *testing.T) {
	c := newContract(models.StatusDocumentsKO)
	c.POD = []string{"IT001E00000001"}

	fc := services.ApplyFields(c, models.FullUpdate{POD: []string{"it001e00000001", " IT001E00000002 "}}, t0)
	if !fc.SupplyPointsAdded || !fc.Changed {
		t.Fatal("expected a new POD to be detected")
	}
	if !c.NewSupplyPoints || c.LastIntegrationAt == nil {
		t.Fatalf("expected integration flags, got %+v", c)
	}
	if len(c.POD) != 2 || c.POD[1] != "IT001E00000002" {
		t.Fatalf("unexpected POD list %v", c.POD)
	}
}

func TestApplyFields_SameCodesNoFlag(t *testing.T) {
	c := newContract(models.StatusLoaded)
	c.PDR = []string{"00880000000001"}
	name := "Rossi Srl"

	fc := services.ApplyFields(c, models.FullUpdate{PDR: []string{"00880000000001"}, CompanyName: &name}, t0)
	if fc.SupplyPointsAdded || c.NewSupplyPoints {
		t.Fatal("unchanged codes must not flag the contract")
	}
	if !fc.Changed {
		t.Fatal("company name change not reported")
	}
	if c.CompanyName != name {
		t.Fatalf("company name = %q", c.CompanyName)
	}
}

func TestApplyFields_NilFieldsUntouched(t *testing.T) {
	c := newContract(models.StatusLoaded)
	before := c.Contact
	if fc := services.ApplyFields(c, models.FullUpdate{}, t0); fc.Changed {
		t.Fatal("empty update reported a change")
	}
	if c.Contact != before {
		t.Fatal("contact changed without being set")
	}
}

func TestApplyFields_SameValuesNoChange(t *testing.T) {
	c := newContract(models.StatusLoaded)
	c.CompanyName = "Rossi Srl"
	c.POD = []string{"IT001E00000001"}
	name := " Rossi Srl "
	contact := c.Contact

	fc := services.ApplyFields(c, models.FullUpdate{CompanyName: &name, Contact: &contact, POD: []string{"it001e00000001"}}, t0)
	if fc.Changed {
		t.Fatal("identical values reported as a change")
	}
}
