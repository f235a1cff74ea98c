package isomodel_test

import (
	"fmt"
	"log"

	"github.com/chrissnell/isomodel/pkg/isomodel"
)

func Example() {
	u := isomodel.NewUserModel()
	if err := u.Load("building.ism", "defaults.ism"); err != nil {
		log.Fatal(err)
	}

	mm, err := u.ToMonthlyModel()
	if err != nil {
		log.Fatal(err)
	}
	results, err := mm.Simulate()
	if err != nil {
		log.Fatal(err)
	}

	for i, r := range results {
		fmt.Printf("month %d: ElecCool = %.3f kWh/m2\n", i+1, r.Get(isomodel.ElecCool))
	}
	fmt.Printf("total: %.3f kWh/m2\n", isomodel.TotalEnergyUse(results))
}
