package mqtt

import "testing"

func TestTopics_Build(t *testing.T) {
	topics := Topics{Prefix: "graybridge"}

	tests := []struct {
		got  string
		want string
	}{
		{topics.State("boiler"), "graybridge/boiler/state"},
		{topics.State(""), "graybridge/state"},
		{topics.Set("boiler"), "graybridge/boiler/set"},
		{topics.Set(""), "graybridge/set"},
		{topics.Availability("boiler"), "graybridge/boiler/availability"},
		{topics.Availability(""), "graybridge/availability"},
		{topics.DeviceError("boiler"), "graybridge/boiler/error"},
		{topics.DeviceError(""), "graybridge/error"},
		{topics.BridgeError(), "graybridge/error"},
		{topics.Status(), "graybridge/status"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTopics_DeviceFromSet(t *testing.T) {
	topics := Topics{Prefix: "graybridge"}

	tests := []struct {
		topic    string
		wantName string
		wantOK   bool
	}{
		{"graybridge/boiler/set", "boiler", true},
		{"graybridge/set", "", true}, // root device
		{"graybridge/boiler/state", "", false},
		{"graybridge/a/b/set", "", false}, // name must be one segment
		{"otherapp/boiler/set", "", false},
		{"graybridge//set", "", false},
		{"graybridge", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		name, ok := topics.DeviceFromSet(tt.topic)
		if name != tt.wantName || ok != tt.wantOK {
			t.Errorf("DeviceFromSet(%q) = (%q, %v), want (%q, %v)",
				tt.topic, name, ok, tt.wantName, tt.wantOK)
		}
	}
}
