package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-predictform/pkg/predictor"
	"github.com/goliatone/go-predictform/pkg/testsupport"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validValues() Values {
	return Values{
		FieldPregnancies:              "2",
		FieldGlucose:                  "125",
		FieldBloodPressure:            "72",
		FieldSkinThickness:            "20",
		FieldInsulin:                  "80",
		FieldBMI:                      "25.5",
		FieldDiabetesPedigreeFunction: "0.45",
		FieldAge:                      "33",
	}
}

func newController(t *testing.T, stub *testsupport.StubPredictor, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	c := New(stub, opts...)
	if err := c.UpdateFields(validValues()); err != nil {
		t.Fatalf("seed fields: %v", err)
	}
	return c
}

func TestUpdateFieldKeepsAllKeysAndClearsOutcome(t *testing.T) {
	stub := &testsupport.StubPredictor{Result: predictor.Result{IsDiabetic: true, Probability: 0.9}}
	c := newController(t, stub)
	c.Submit(context.Background())
	if c.State().Result == nil {
		t.Fatalf("expected result before edit")
	}

	updates := []struct{ name, value string }{
		{FieldGlucose, "140"},
		{FieldAge, "abc"},
		{FieldGlucose, ""},
		{FieldBMI, " 30.1 "},
	}
	for _, u := range updates {
		if err := c.UpdateField(u.name, u.value); err != nil {
			t.Fatalf("update %s: %v", u.name, err)
		}
		state := c.State()
		if state.Result != nil || state.Error != "" || state.FieldErrors != nil {
			t.Fatalf("outcome should be cleared after edit, got %+v", state)
		}
	}

	want := validValues()
	want[FieldGlucose] = ""
	want[FieldAge] = "abc"
	want[FieldBMI] = " 30.1 "
	if diff := cmp.Diff(want, c.State().Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateFieldRejectsUnknownName(t *testing.T) {
	c := newController(t, &testsupport.StubPredictor{})
	before := c.State()

	err := c.UpdateField("Cholesterol", "200")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := c.UpdateFields(Values{FieldAge: "1", "bogus": "2"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField for batch, got %v", err)
	}
	if diff := cmp.Diff(before, c.State()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestResetBlanksEverything(t *testing.T) {
	stub := &testsupport.StubPredictor{Err: &predictor.APIError{StatusCode: 500, Detail: "boom"}}
	c := newController(t, stub)
	c.Submit(context.Background())
	if c.State().Error == "" {
		t.Fatalf("expected error before reset")
	}

	c.Reset()
	state := c.State()
	if diff := cmp.Diff(EmptyValues(), state.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if state.Error != "" || state.Result != nil || state.Loading {
		t.Fatalf("reset should clear outcome, got %+v", state)
	}
	if state.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", state.Phase())
	}
}

func TestSubmitSuccessSendsAllEightFields(t *testing.T) {
	stub := &testsupport.StubPredictor{Result: predictor.Result{IsDiabetic: true, Probability: 0.734}}
	c := newController(t, stub)

	state := c.Submit(context.Background())
	if state.Loading {
		t.Fatalf("loading should end after submit")
	}
	if diff := cmp.Diff(&predictor.Result{IsDiabetic: true, Probability: 0.734}, state.Result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if state.Phase() != PhaseResult {
		t.Fatalf("phase = %s", state.Phase())
	}

	want := predictor.Request{
		"Pregnancies": 2, "Glucose": 125, "BloodPressure": 72, "SkinThickness": 20,
		"Insulin": 80, "BMI": 25.5, "DiabetesPedigreeFunction": 0.45, "Age": 33,
	}
	requests := stub.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	if diff := cmp.Diff(want, requests[0]); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitErrorPrecedence(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &predictor.APIError{StatusCode: 400, Detail: "Glucose must be non-negative", ErrorText: "ignored"}, "Glucose must be non-negative"},
		{"error field", &predictor.APIError{StatusCode: 500, ErrorText: "model crashed"}, "model crashed"},
		{"no body", &predictor.APIError{StatusCode: 502}, FallbackMessage},
		{"transport", &predictor.TransportError{Op: "POST", Err: errors.New("dial tcp: connection refused")}, "dial tcp: connection refused"},
		{"empty description", errors.New("  "), FallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newController(t, &testsupport.StubPredictor{Err: tc.err})
			state := c.Submit(context.Background())
			if state.Error != tc.want {
				t.Fatalf("error = %q, want %q", state.Error, tc.want)
			}
			if state.Result != nil || state.Loading {
				t.Fatalf("unexpected state %+v", state)
			}
			if state.Phase() != PhaseError {
				t.Fatalf("phase = %s", state.Phase())
			}
		})
	}
}

func TestSubmitMapsValidationIssuesToFields(t *testing.T) {
	stub := &testsupport.StubPredictor{Err: &predictor.APIError{
		StatusCode: 422,
		Issues: []predictor.ValidationIssue{
			{Loc: []string{"body", "Glucose"}, Msg: "Input should be a valid number"},
			{Loc: []string{"body"}, Msg: "Malformed payload"},
		},
	}}
	c := newController(t, stub)

	state := c.Submit(context.Background())
	if want := "Glucose: Input should be a valid number; Malformed payload"; state.Error != want {
		t.Fatalf("error = %q, want %q", state.Error, want)
	}
	if diff := cmp.Diff(map[string]string{"Glucose": "Input should be a valid number"}, state.FieldErrors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitValidatePolicyShortCircuits(t *testing.T) {
	stub := &testsupport.StubPredictor{}
	c := newController(t, stub)
	if err := c.UpdateField(FieldGlucose, "abc"); err != nil {
		t.Fatalf("update: %v", err)
	}

	state := c.Submit(context.Background())
	if stub.Calls() != 0 {
		t.Fatalf("expected no outbound request, got %d", stub.Calls())
	}
	if !strings.Contains(state.Error, "Glucose") {
		t.Fatalf("error should name Glucose, got %q", state.Error)
	}
	if diff := cmp.Diff(map[string]string{"Glucose": "must be a number"}, state.FieldErrors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if state.Loading {
		t.Fatalf("loading should end")
	}
}

func TestSubmitValidatePolicyRejectsBlankAndNonFinite(t *testing.T) {
	c := newController(t, &testsupport.StubPredictor{})
	c.UpdateFields(Values{FieldAge: "", FieldBMI: "NaN", FieldInsulin: "Inf"})

	state := c.Submit(context.Background())
	want := map[string]string{
		FieldAge:     "is required",
		FieldBMI:     "must be a number",
		FieldInsulin: "must be a number",
	}
	if diff := cmp.Diff(want, state.FieldErrors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if want := "Please enter valid numbers for Insulin, BMI, Age."; state.Error != want {
		t.Fatalf("error = %q, want %q", state.Error, want)
	}
}

func TestParseNumberAcceptsDecimalOnly(t *testing.T) {
	cases := map[string]float64{
		"125":    125,
		" 25.5 ": 25.5,
		"-.5":    -0.5,
		"3.":     3,
		"1e2":    100,
		"+2E-1":  0.2,
	}
	for input, want := range cases {
		got, err := ParseNumber(input)
		if err != nil || got != want {
			t.Fatalf("ParseNumber(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	for _, input := range []string{"0x1p3", "0x10", "1_000", "Infinity", "inf", "NaN", "1e400", "12abc", "."} {
		if _, err := ParseNumber(input); err == nil {
			t.Fatalf("ParseNumber(%q) should fail", input)
		}
	}
}

func TestSubmitValidatePolicyRejectsHexFloat(t *testing.T) {
	stub := &testsupport.StubPredictor{}
	c := newController(t, stub)
	c.UpdateField(FieldGlucose, "0x1p3")

	state := c.Submit(context.Background())
	if stub.Calls() != 0 {
		t.Fatalf("expected no outbound request, got %d", stub.Calls())
	}
	if diff := cmp.Diff(map[string]string{"Glucose": "must be a number"}, state.FieldErrors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitForwardPolicySendsNull(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":[{"loc":["body","Glucose"],"msg":"Input should be a valid number","type":"float_type"}]}`)
	}))
	defer server.Close()

	client, err := predictor.New(server.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	c := New(client, WithPolicy(PolicyForward), WithLogger(quietLogger()))
	c.UpdateFields(validValues())
	c.UpdateField(FieldGlucose, "abc")
	c.UpdateField(FieldBMI, "25.5kg")

	state := c.Submit(context.Background())
	if !strings.Contains(body, `"Glucose":null`) {
		t.Fatalf("expected Glucose null in body, got %s", body)
	}
	if !strings.Contains(body, `"BMI":25.5`) {
		t.Fatalf("expected leading-number parse of BMI, got %s", body)
	}
	if state.FieldErrors["Glucose"] == "" {
		t.Fatalf("server rejection should map onto Glucose, got %+v", state)
	}
}

func TestParseLeadingNumber(t *testing.T) {
	cases := map[string]float64{
		"42":        42,
		"  3.5abc":  3.5,
		".5":        0.5,
		"-1e2x":     -100,
		"Infinity":  math.Inf(1),
		"-Infinity": math.Inf(-1),
	}
	for input, want := range cases {
		if got := parseLeadingNumber(input); got != want {
			t.Fatalf("parseLeadingNumber(%q) = %v, want %v", input, got, want)
		}
	}
	for _, input := range []string{"", "abc", "-", "."} {
		if got := parseLeadingNumber(input); !math.IsNaN(got) {
			t.Fatalf("parseLeadingNumber(%q) = %v, want NaN", input, got)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for raw, want := range map[string]NumericPolicy{"": PolicyValidate, "Validate": PolicyValidate, "forward": PolicyForward} {
		got, err := ParsePolicy(raw)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParsePolicy("coerce"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestLoadingOnlyDuringSubmission(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	stub := &testsupport.StubPredictor{Respond: func(ctx context.Context, req predictor.Request) (predictor.Result, error) {
		close(entered)
		<-release
		return predictor.Result{Probability: 0.12}, nil
	}}

	var mu sync.Mutex
	var phases []Phase
	c := newController(t, stub, WithOnChange(func(s State) {
		mu.Lock()
		phases = append(phases, s.Phase())
		mu.Unlock()
	}))
	if c.State().Loading {
		t.Fatalf("idle controller should not be loading")
	}

	done := make(chan State)
	go func() { done <- c.Submit(context.Background()) }()

	<-entered
	if !c.State().Loading {
		t.Fatalf("expected loading while request is in flight")
	}
	close(release)
	final := <-done
	if final.Loading || c.State().Loading {
		t.Fatalf("loading should be false after delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]Phase{PhaseIdle, PhaseLoading, PhaseResult}, phases); diff != "" {
		t.Fatalf("phase sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitTwiceReplacesResult(t *testing.T) {
	results := []predictor.Result{{IsDiabetic: true, Probability: 0.734}, {IsDiabetic: false, Probability: 0.12}}
	var calls int
	stub := &testsupport.StubPredictor{Respond: func(context.Context, predictor.Request) (predictor.Result, error) {
		r := results[calls]
		calls++
		return r, nil
	}}
	c := newController(t, stub)

	first := c.Submit(context.Background())
	second := c.Submit(context.Background())
	if diff := cmp.Diff(&results[0], first.Result); diff != "" {
		t.Fatalf("first result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&results[1], second.Result); diff != "" {
		t.Fatalf("second result mismatch (-want +got):\n%s", diff)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("sequence should advance: %d then %d", first.Seq, second.Seq)
	}
	if first.Result == second.Result {
		t.Fatalf("results should be independent values")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	firstEntered := make(chan struct{})
	var firstCtx context.Context
	var call int
	var mu sync.Mutex
	stub := &testsupport.StubPredictor{Respond: func(ctx context.Context, req predictor.Request) (predictor.Result, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 1 {
			firstCtx = ctx
			close(firstEntered)
			<-ctx.Done()
			return predictor.Result{IsDiabetic: true, Probability: 0.99}, nil
		}
		return predictor.Result{IsDiabetic: false, Probability: 0.05}, nil
	}}
	c := newController(t, stub)

	firstDone := make(chan State)
	go func() { firstDone <- c.Submit(context.Background()) }()
	<-firstEntered

	second := c.Submit(context.Background())
	stale := <-firstDone

	if firstCtx.Err() == nil {
		t.Fatalf("superseded request context should be cancelled")
	}
	want := &predictor.Result{IsDiabetic: false, Probability: 0.05}
	if diff := cmp.Diff(want, second.Result); diff != "" {
		t.Fatalf("latest result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, c.State().Result); diff != "" {
		t.Fatalf("stale response changed state (-want +got):\n%s", diff)
	}
	if stale.Result != nil && stale.Result.Probability == 0.99 {
		t.Fatalf("stale submit returned its own outcome: %+v", stale.Result)
	}
}

func TestEditDuringLoadingAbandonsSubmission(t *testing.T) {
	entered := make(chan struct{})
	stub := &testsupport.StubPredictor{Respond: func(ctx context.Context, req predictor.Request) (predictor.Result, error) {
		close(entered)
		<-ctx.Done()
		return predictor.Result{}, ctx.Err()
	}}
	c := newController(t, stub)

	done := make(chan State)
	go func() { done <- c.Submit(context.Background()) }()
	<-entered

	if err := c.UpdateField(FieldAge, "40"); err != nil {
		t.Fatalf("update: %v", err)
	}
	<-done

	state := c.State()
	if state.Loading || state.Error != "" || state.Result != nil {
		t.Fatalf("abandoned submission leaked into state: %+v", state)
	}
	if state.Fields[FieldAge] != "40" {
		t.Fatalf("edit lost: %q", state.Fields[FieldAge])
	}
}

func TestSubmitRecordsTimestamp(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newController(t, &testsupport.StubPredictor{}, WithClock(func() time.Time { return fixed }))
	if got := c.Submit(context.Background()).SubmittedAt; !got.Equal(fixed) {
		t.Fatalf("submitted at = %v", got)
	}
}

func TestSubmitWithoutPredictor(t *testing.T) {
	c := New(nil, WithLogger(quietLogger()))
	c.UpdateFields(validValues())
	if state := c.Submit(context.Background()); state.Error == "" {
		t.Fatalf("expected configuration error")
	}
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	c := newController(t, &testsupport.StubPredictor{Result: predictor.Result{Probability: 0.5}})
	c.Submit(context.Background())

	snapshot := c.State()
	snapshot.Fields[FieldAge] = "mutated"
	snapshot.Result.Probability = 1

	state := c.State()
	if state.Fields[FieldAge] != "33" || state.Result.Probability != 0.5 {
		t.Fatalf("snapshot mutation leaked into controller: %+v", state)
	}
}
