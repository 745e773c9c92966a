package txui

import "testing"

func TestCall(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []any
		want string
	}{
		{"no args", fnReloadPage, nil, `txui.reload_page();`},
		{"string", fnNewTID, []any{"abc"}, `txui.new_tid("abc");`},
		{"several", fnJumpExtern, []any{"/x", "_blank"}, `txui.jump_extern("/x", "_blank");`},
		{"escapes markup", fnExtraContent, []any{[]string{`<b>`}}, `txui.handle_dynamic_extra_content(["<b>"]);`},
		{"unencodable", "f", []any{func() {}}, `f(null);`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Call(tt.fn, tt.args...); got != tt.want {
				t.Errorf("Call() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPatch_Statement(t *testing.T) {
	got := Patch{CID: "a", JS: "go();", Main: "<i></i>"}.statement()
	want := `txui.replace_component("a", {"js":"go();","main":"<i></i>"});`
	if got != want {
		t.Errorf("statement() = %s, want %s", got, want)
	}
}
