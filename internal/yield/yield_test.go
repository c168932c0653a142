package yield

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var allStates = []State{StateOK, StatePartial, StateFail, StateTrap}

func TestOK_IsZeroValue(t *testing.T) {
	y := OK()
	assert.Equal(t, Yield{}, y)
	assert.Equal(t, StateOK, y.State)
	assert.Equal(t, IntentNone, y.Intent)
	assert.Equal(t, OriginLocal, y.Origin)
	assert.Zero(t, y.Code)
	assert.Zero(t, y.Info)
}

func TestNew_SetsOnlyState(t *testing.T) {
	y := New(StateFail)
	assert.Equal(t, Yield{State: StateFail}, y)
}

func TestSetters_AreFluentAndCopy(t *testing.T) {
	base := OK()
	y := base.WithState(StatePartial).
		WithIntent(IntentRetry).
		WithOrigin(OriginWorker).
		WithCode(9).
		WithInfo(42)

	assert.Equal(t, Yield{
		State:  StatePartial,
		Intent: IntentRetry,
		Origin: OriginWorker,
		Code:   9,
		Info:   42,
	}, y)
	assert.Equal(t, OK(), base, "setters must not mutate the receiver")
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		state   State
		ok      bool
		trap    bool
		failure bool
	}{
		{StateOK, true, false, false},
		{StatePartial, false, false, false},
		{StateFail, false, false, true},
		{StateTrap, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			y := New(tt.state)
			assert.Equal(t, tt.ok, y.IsOK())
			assert.Equal(t, tt.trap, y.IsTrap())
			assert.Equal(t, tt.failure, y.IsFailure())
			assert.Equal(t, y.IsFailure(), y.Not())
		})
	}
}

func TestMerge_MoreSevereReplacesAllFields(t *testing.T) {
	a := New(StatePartial).WithIntent(IntentDefer).WithCode(4).WithInfo(1)
	b := New(StateFail).WithOrigin(OriginRemote).WithCode(3)

	got := Merge(a, b)
	assert.Equal(t, b, got)
}

func TestMerge_LessSevereKeepsLeft(t *testing.T) {
	a := New(StateFail).WithCode(1)
	b := New(StatePartial).WithCode(4).WithInfo(99)

	assert.Equal(t, a, Merge(a, b))
}

func TestMerge_EqualSeverityKeepsLeft(t *testing.T) {
	a := New(StateFail).WithCode(2)
	b := New(StateFail).WithCode(3).WithIntent(IntentStop)

	assert.Equal(t, a, Merge(a, b))
	assert.Equal(t, b, Merge(b, a))
}

func TestMerge_SeverityIsMax(t *testing.T) {
	for _, sa := range allStates {
		for _, sb := range allStates {
			a := New(sa).WithCode(1)
			b := New(sb).WithCode(2)
			got := Merge(a, b)
			assert.Equal(t, max(a.Severity(), b.Severity()), got.Severity(),
				"merge(%s, %s)", sa, sb)
		}
	}
}

func TestMerge_Idempotent(t *testing.T) {
	for _, sa := range allStates {
		for _, sb := range allStates {
			a := New(sa).WithCode(1)
			b := New(sb).WithCode(2).WithOrigin(OriginWorker)
			once := Merge(a, b)
			twice := Merge(a, once)
			assert.Equal(t, once, twice, "merge(%s, merge(%s, %s))", sa, sa, sb)
		}
	}
}

func TestMerge_InPlace(t *testing.T) {
	var y Yield
	y.Merge(New(StatePartial).WithCode(4))
	y.Merge(New(StateOK))
	y.Merge(New(StateFail).WithCode(1))
	y.Merge(New(StateFail).WithCode(3))

	assert.Equal(t, New(StateFail).WithCode(1), y)
}

func TestMergeAll(t *testing.T) {
	assert.Equal(t, OK(), MergeAll())

	got := MergeAll(
		New(StatePartial).WithCode(4),
		New(StateTrap).WithOrigin(OriginProcess).WithCode(2),
		New(StateFail).WithCode(3),
	)
	assert.Equal(t, New(StateTrap).WithOrigin(OriginProcess).WithCode(2), got)
}

func TestString(t *testing.T) {
	tests := []struct {
		y    Yield
		want string
	}{
		{OK(), "ok"},
		{New(StateFail).WithCode(3), "fail/code=3"},
		{New(StateTrap).WithOrigin(OriginProcess).WithCode(1), "trap@process/code=1"},
		{New(StatePartial).WithIntent(IntentRetry).WithCode(4).WithInfo(7), "partial/retry/code=4/info=7"},
		{New(State(9)), "state(9)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.y.String())
		})
	}
}

func TestParse_RejectsUnknownNames(t *testing.T) {
	_, err := ParseState("broken")
	assert.Error(t, err)
	_, err = ParseState("")
	assert.Error(t, err, "state has no empty default")

	_, err = ParseIntent("later")
	assert.Error(t, err)
	_, err = ParseOrigin("moon")
	assert.Error(t, err)

	i, err := ParseIntent("")
	require.NoError(t, err)
	assert.Equal(t, IntentNone, i)

	o, err := ParseOrigin("")
	require.NoError(t, err)
	assert.Equal(t, OriginLocal, o)
}

func TestJSON_UsesNames(t *testing.T) {
	y := New(StateTrap).WithIntent(IntentStop).WithOrigin(OriginProcess).WithCode(1)

	data, err := json.Marshal(y)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"trap","intent":"stop","origin":"process","code":1,"info":0}`, string(data))

	var back Yield
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, y, back)
}

func TestYAML_DecodesNames(t *testing.T) {
	var y Yield
	err := yaml.Unmarshal([]byte("state: partial\nintent: defer\norigin: worker\ncode: 4\n"), &y)
	require.NoError(t, err)
	assert.Equal(t, New(StatePartial).WithIntent(IntentDefer).WithOrigin(OriginWorker).WithCode(4), y)

	err = yaml.Unmarshal([]byte("state: exploded\n"), &y)
	assert.Error(t, err)
}
