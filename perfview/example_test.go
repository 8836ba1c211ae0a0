// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfview_test

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfview"
)

const results = `{
  "100": {
    "REL_17_STABLE": {"reversed": [
      {"revision": "9fe2f4a1", "ctime": 1714521600, "metric": "591234.5"},
      {"revision": "1d0c3b7e", "ctime": 1714608000, "metric": "588001.2"}
    ]},
    "REL_16_STABLE": {"reversed": [
      {"revision": "77aa03c2", "ctime": 1714521600, "metric": 575000}
    ]}
  }
}`

func Example() {
	d, err := perfdata.Decode(strings.NewReader(results))
	if err != nil {
		log.Fatal(err)
	}
	v := perfview.Load(d, perfview.Options{Now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})

	for _, o := range v.ScaleOptions() {
		fmt.Println(o.Label)
	}
	v.ToggleBranch("REL_16_STABLE")
	fmt.Println(v.ButtonText())
	for _, e := range v.Scene().Legend {
		fmt.Println(e.Branch, e.Active)
	}
	// Output:
	// 100 (3 results)
	// 1 Branches Selected
	// REL_17_STABLE true
	// REL_16_STABLE false
}

func ExampleReplay() {
	d, err := perfdata.Decode(strings.NewReader(results))
	if err != nil {
		log.Fatal(err)
	}
	v := perfview.Load(d, perfview.Options{})
	err = perfview.Replay(v, strings.NewReader("deselect-all\nzoom 2024-05-01 2024-05-01\n"))
	if err != nil {
		log.Fatal(err)
	}
	s := v.Summary()
	fmt.Println(s.Branches)
	fmt.Println(v.Scene().Message)
	// Output:
	// None
	// No data for selected filters.
}
