package ozw

import "testing"

func TestValueTypeString(t *testing.T) {
	tests := []struct {
		t    ValueType
		want string
	}{
		{ValueTypeBool, "bool"},
		{ValueTypeDecimal, "decimal"},
		{ValueTypeList, "list"},
		{ValueTypeBitSet, "bitset"},
		{ValueType(0x42), "unknown(0x42)"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("ValueType(%d).String() = %q, want %q", uint8(tt.t), got, tt.want)
		}
	}
	if ValueType(0x42).Valid() {
		t.Error("ValueType(0x42) should not be valid")
	}
}

func TestControllerStrings(t *testing.T) {
	if got := ControllerStateInProgress.String(); got != "In Progress" {
		t.Errorf("state = %q", got)
	}
	if got := ControllerStateNodeFailed.String(); got != "Node Failed" {
		t.Errorf("state = %q", got)
	}
	if got := ControllerErrorNotSUC.String(); got != "Not SUC" {
		t.Errorf("error = %q", got)
	}
	if got := ControllerErrorOverflow.String(); got != "Overflow" {
		t.Errorf("error = %q", got)
	}
	if !ControllerStateCompleted.Terminal() || ControllerStateWaiting.Terminal() {
		t.Error("Terminal() misclassifies states")
	}
}

func TestParseControllerCommand(t *testing.T) {
	tests := []struct {
		name    string
		want    ControllerCommand
		wantErr bool
	}{
		{"AddDevice", CommandAddDevice, false},
		{"removedevice", CommandRemoveDevice, false},
		{"RequestNodeNeighborUpdate", CommandRequestNodeNeighborUpdate, false},
		{"None", CommandNone, true},
		{"Bogus", CommandNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseControllerCommand(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValueIDKey(t *testing.T) {
	a := ValueID{HomeID: 1, NodeID: 5, CommandClass: 0x25, Instance: 1, Index: 0, Type: ValueTypeBool, Genre: GenreUser}
	b := a
	b.Genre = GenreSystem
	if a.Key() != b.Key() {
		t.Error("keys should ignore genre and type")
	}
	if got := a.String(); got != "5-37-1-0" {
		t.Errorf("String() = %q, want 5-37-1-0", got)
	}
}

func TestNotificationTypeString(t *testing.T) {
	if got := NotificationAllNodesQueriedSomeDead.String(); got != "AllNodesQueriedSomeDead" {
		t.Errorf("got %q", got)
	}
	if got := NotificationType(200).String(); got != "Unknown(200)" {
		t.Errorf("got %q", got)
	}
}

func TestParseMetaDataField(t *testing.T) {
	for _, f := range MetaDataFields() {
		got, ok := ParseMetaDataField(f.String())
		if !ok || got != f {
			t.Errorf("ParseMetaDataField(%q) = %v, %v", f.String(), got, ok)
		}
	}
	if got, ok := ParseMetaDataField("inclusiondescription"); !ok || got != MetaDataInclusionHelp {
		t.Errorf("case-insensitive lookup = %v, %v", got, ok)
	}
	if _, ok := ParseMetaDataField("Colour"); ok {
		t.Error("unknown field accepted")
	}
	if got := MetaDataField(99).String(); got != "unknown(99)" {
		t.Errorf("String() = %q", got)
	}
}
