package challenge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    int
		wantErr bool
		errIs   error
	}{
		{name: "正常系: 単一の数字", expr: "7", want: 7},
		{name: "正常系: 加算と乗算", expr: "7+2x9", want: 25},
		{name: "正常系: 乗算が先", expr: "2x3+4x5", want: 26},
		{name: "正常系: 減算", expr: "1-9x2", want: -17},
		{name: "正常系: 末尾の=?", expr: "3-4+5=?", want: 4},
		{name: "正常系: アスタリスク", expr: "6*7", want: 42},
		{name: "正常系: 複数桁", expr: "12+30", want: 42},
		{name: "異常系: 空", expr: "", wantErr: true},
		{name: "異常系: 末尾の演算子", expr: "7+", wantErr: true},
		{name: "異常系: 先頭の演算子", expr: "-3", wantErr: true},
		{name: "異常系: 除算", expr: "8/2", wantErr: true},
		{name: "異常系: 乗算の桁あふれ", expr: "9999999999x9999999999", wantErr: true, errIs: ErrOverflow},
		{name: "異常系: 加算の桁あふれ", expr: "9223372036854775807+1", wantErr: true, errIs: ErrOverflow},
		{name: "正常系: 上限の長さでも桁あふれしない", expr: "9x9x9x9x9x9x9x9x9", want: 387420489},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpression(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for length := 1; length <= MaxExpressionLength; length++ {
		expr, result := Expression(rnd, length)

		assert.Len(t, expr, 2*length-1)
		got, err := Evaluate(expr)
		require.NoError(t, err)
		assert.Equal(t, got, result)
	}
}
