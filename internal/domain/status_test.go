package domain

import "testing"

func TestCanTransitionToMatrix(t *testing.T) {
	allowed := map[Status]map[Status]bool{
		StatusPending:    {StatusProcessing: true, StatusCancelled: true},
		StatusProcessing: {StatusSuccess: true, StatusFailed: true, StatusCancelled: true},
	}

	for _, from := range Statuses() {
		for _, to := range Statuses() {
			want := allowed[from][to]
			got := from.CanTransitionTo(to)
			if got != want {
				t.Errorf("CanTransitionTo(%s -> %s): want=%v got=%v", from, to, want, got)
			}
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingTransitions(t *testing.T) {
	for _, from := range []Status{StatusSuccess, StatusFailed, StatusCancelled, StatusRollback} {
		for _, to := range Statuses() {
			if from.CanTransitionTo(to) {
				t.Errorf("terminal %s allows transition to %s", from, to)
			}
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	cases := []struct {
		status                                  Status
		completed, allowsDataUpdate, processing bool
	}{
		{StatusPending, false, true, false},
		{StatusProcessing, false, false, true},
		{StatusSuccess, true, false, false},
		{StatusFailed, true, true, false},
		{StatusCancelled, true, false, false},
		{StatusRollback, true, false, false},
	}
	for _, c := range cases {
		if got := c.status.IsCompleted(); got != c.completed {
			t.Errorf("%s IsCompleted: want=%v got=%v", c.status, c.completed, got)
		}
		if got := c.status.AllowsDataUpdate(); got != c.allowsDataUpdate {
			t.Errorf("%s AllowsDataUpdate: want=%v got=%v", c.status, c.allowsDataUpdate, got)
		}
		if got := c.status.IsProcessing(); got != c.processing {
			t.Errorf("%s IsProcessing: want=%v got=%v", c.status, c.processing, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("PROCESSING")
	if err != nil {
		t.Fatalf("ParseStatus(PROCESSING): %v", err)
	}
	if got != StatusProcessing {
		t.Fatalf("ParseStatus(PROCESSING): got=%s", got)
	}

	if _, err := ParseStatus("pending"); err == nil {
		t.Fatalf("ParseStatus is case sensitive, lowercase should fail")
	}
	if _, err := ParseStatus("DONE"); err == nil {
		t.Fatalf("ParseStatus(DONE) should fail")
	}
}
