package respond

import (
	"errors"
	"testing"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "api key in catalog url",
			err:  errors.New(`Get "https://www.googleapis.com/books/v1/volumes?q=go&key=AIzaSyA-secret&maxResults=10": timeout`),
			want: `Get "https://www.googleapis.com/books/v1/volumes?q=go&key=****&maxResults=10": timeout`,
		},
		{
			name: "api key as first parameter",
			err:  errors.New("GET /volumes?key=abc123 failed"),
			want: "GET /volumes?key=**** failed",
		},
		{
			name: "postgres url password",
			err:  errors.New("open postgres://books:s3cret@db:5432/books: refused"),
			want: "open postgres://books:****@db:5432/books: refused",
		},
		{
			name: "key/value dsn password",
			err:  errors.New("connect host=db user=books password=s3cret dbname=books"),
			want: "connect host=db user=books password=**** dbname=books",
		},
		{
			name: "nothing to mask",
			err:  errors.New("settings: unknown key \"pageSize\""),
			want: "settings: unknown key \"pageSize\"",
		},
		{
			name: "monkey is not a key parameter",
			err:  errors.New("query monkey=1"),
			want: "query monkey=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeError(tt.err); got != tt.want {
				t.Errorf("SanitizeError() = %q, want %q", got, tt.want)
			}
		})
	}
}
