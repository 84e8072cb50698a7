package guirpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElement(t *testing.T) {
	root, err := ParseElement([]byte("<cc_status><task_mode>2</task_mode><disallow_attach/></cc_status>"))
	require.NoError(t, err)
	assert.Equal(t, "cc_status", root.Tag)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "task_mode", root.Children[0].Tag)
	assert.Equal(t, "2", root.Children[0].Text)
	assert.Equal(t, "disallow_attach", root.Children[1].Tag)
}

func TestParseElementMalformed(t *testing.T) {
	cases := []string{
		"<unclosed>",
		"<a><b></a></b>",
		"not xml at all <",
		"",
	}
	for _, input := range cases {
		_, err := ParseElement([]byte(input))
		require.Error(t, err, "input %q", input)
		var malformed *MalformedPayloadError
		assert.ErrorAs(t, err, &malformed, "input %q", input)
	}
}

func TestBoolText(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},     // self-closed or blank element means true
		{"   ", true},
		{"0", false},
		{"false", false},
		{"FALSE", false},
		{"False", false},
		{"1", true},
		{"true", true},
		{"yes", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, boolText(&Element{Tag: "flag", Text: tc.text}), "text %q", tc.text)
	}
}

func TestIntText(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"3", 3},
		{"3.0", 3}, // the wire format sometimes renders integers as floats
		{"716.000000", 716},
		{"-1", -1},
		{"garbage", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, intText(&Element{Tag: "n", Text: tc.text}), "text %q", tc.text)
	}
}

func TestFloatText(t *testing.T) {
	assert.Equal(t, 0.0, floatText(&Element{Tag: "f"}))
	assert.Equal(t, 0.25, floatText(&Element{Tag: "f", Text: " 0.25 "}))
}

func TestStrText(t *testing.T) {
	assert.Equal(t, "", strText(&Element{Tag: "s"}))
	assert.Equal(t, "host-1", strText(&Element{Tag: "s", Text: "  host-1\n"}))
}

func TestUnknownTagsIgnored(t *testing.T) {
	root, err := ParseElement([]byte(`<app>
		<name>einstein_O3AS</name>
		<user_friendly_name>Gravitational Wave search</user_friendly_name>
		<some_future_field>whatever</some_future_field>
	</app>`))
	require.NoError(t, err)

	app := decodeApp(root)
	assert.Equal(t, "einstein_O3AS", app.Name)
	assert.Equal(t, "Gravitational Wave search", app.UserFriendlyName)
	assert.False(t, app.NonCPUIntensive)
}

func TestEnumUnknownSentinel(t *testing.T) {
	assert.Equal(t, NetworkStatusUnknown, networkStatusFromWire(99))
	assert.Equal(t, RunModeUnknown, runModeFromWire(0))
	assert.Equal(t, ResultStateUnknown, resultStateFromWire(42))
	assert.Equal(t, CPUSchedUnknown, cpuSchedFromWire(-7))
	assert.Equal(t, ProcessStateUnknown, processStateFromWire(3))
	assert.Equal(t, RPCReasonUnknown, rpcReasonFromWire(12))
}

func TestSuspendReasonDescription(t *testing.T) {
	assert.Equal(t, "not suspended", SuspendReasonNotSuspended.Description())
	assert.Equal(t, "on batteries", SuspendReasonBatteries.Description())
	assert.Equal(t, "on batteries, computer is in use",
		(SuspendReasonBatteries | SuspendReasonUserActive).Description())
	assert.Equal(t, "not connected to WiFi network", SuspendReasonWifiState.Description())
}
