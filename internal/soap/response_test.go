package soap

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		resp *RawResponse
		want bool
	}{
		{"ok with marker", &RawResponse{StatusCode: 200, Body: "<x><ResponseCode>000</ResponseCode></x>"}, true},
		{"ok without marker", &RawResponse{StatusCode: 200, Body: "<x><ResponseCode>401</ResponseCode></x>"}, false},
		{"marker with server error", &RawResponse{StatusCode: 500, Body: "<ResponseCode>000</ResponseCode>"}, false},
		{"empty body", &RawResponse{StatusCode: 200}, false},
		{"nil response", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.resp); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBadCredentials(t *testing.T) {
	if !IsBadCredentials(&RawResponse{StatusCode: 200, Body: "<ResponseCode>401</ResponseCode>"}) {
		t.Error("IsBadCredentials() = false for 401 response code")
	}
	if IsBadCredentials(&RawResponse{StatusCode: 401, Body: "<ResponseCode>001</ResponseCode>"}) {
		t.Error("IsBadCredentials() = true for a non-401 response code")
	}
	if IsBadCredentials(nil) {
		t.Error("IsBadCredentials(nil) = true")
	}
}

func TestResponseCode(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"<m:Resp><ResponseCode>000</ResponseCode></m:Resp>", "000"},
		{"<ResponseCode> 401 </ResponseCode>", "401"},
		{"<ResponseCode>001</ResponseCode><ResponseCode>000</ResponseCode>", "001"},
		{"no code here", ""},
	}

	for _, tt := range tests {
		if got := ResponseCode(tt.body); got != tt.want {
			t.Errorf("ResponseCode(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
