package coverage

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		coverage, redundancy float64
		want                 Status
	}{
		{100, 85, StatusOptimal},
		{100, 80, StatusOptimal},
		{100, 79.9, StatusGood},
		{92, 65, StatusGood},
		{90, 60, StatusGood},
		{95, 59, StatusAcceptable},
		{80, 10, StatusAcceptable},
		{75, 0, StatusAcceptable},
		{74.99, 100, StatusCritical},
		{60, 0, StatusCritical},
		{0, 0, StatusCritical},
	}
	for _, tc := range cases {
		if got := Classify(tc.coverage, tc.redundancy); got != tc.want {
			t.Errorf("Classify(%v, %v) = %s, want %s", tc.coverage, tc.redundancy, got, tc.want)
		}
	}
}

func TestStatusClassified(t *testing.T) {
	for _, s := range Statuses {
		if !s.Classified() {
			t.Errorf("%s should be classified", s)
		}
	}
	if StatusUnclassified.Classified() {
		t.Errorf("unclassified reported as classified")
	}
}
