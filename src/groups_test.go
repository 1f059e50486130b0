package pawbasic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadString(t *testing.T) {
	end, s, err := ReadString(`"a\tb" + x`, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, end)
	assert.Equal(t, "a\tb", s)

	_, s, err = ReadString(`'it\'s'`, 0)
	require.NoError(t, err)
	assert.Equal(t, "it's", s)

	_, s, err = ReadString(`"é"`, 0)
	require.NoError(t, err)
	assert.Equal(t, "é", s)

	for _, bad := range []string{`"open`, "\"line\nbreak\"", `"\q"`, `"\u12"`} {
		_, _, err := ReadString(bad, 0)
		require.Error(t, err, bad)
		de, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, StatusSyntax, de.Status)
	}
}

func TestIndexGroup(t *testing.T) {
	end, err := IndexGroup(`(1, ")", [2, (3)]) + 1`, 0)
	require.NoError(t, err)
	assert.Equal(t, 17, end)

	_, err = IndexGroup("(1, 2]", 0)
	require.Error(t, err)

	_, err = IndexGroup("(1, (2)", 0)
	require.Error(t, err)
}

func TestSplitGroup(t *testing.T) {
	end, parts, err := SplitGroup("(1, (2,3), 4)", 0, ',')
	require.NoError(t, err)
	assert.Equal(t, 12, end)
	assert.Equal(t, []string{"1", "(2,3)", "4"}, parts)

	_, parts, err = SplitGroup("(  )", 0, ',')
	require.NoError(t, err)
	assert.Nil(t, parts)

	_, parts, err = SplitGroup(`("a,b"; 2)`, 0, ';')
	require.NoError(t, err)
	assert.Equal(t, []string{`"a,b"`, "2"}, parts)
}

func TestReadGroupEvaluatesInOrder(t *testing.T) {
	interp := New(testConfig(nil))
	ev := &evaluator{rt: interp.runtime(context.Background(), "", ""), scope: interp.Root()}

	_, values, err := ReadGroup("(1 + 1, , \"x\" & \"y\", (2, 3))", 0, ',', ev)
	require.NoError(t, err)
	require.Len(t, values, 3, "empty segments are skipped")
	assert.Equal(t, "2", values[0].String())
	assert.Equal(t, "xy", values[1].String())
	assert.Equal(t, "[2, 3]", values[2].String())
}

func TestSplitTopLevel(t *testing.T) {
	parts, seps, err := splitTopLevel(`"a"; b, c(1, 2)`, ";,")
	require.NoError(t, err)
	assert.Equal(t, []string{`"a"`, "b", "c(1, 2)"}, parts)
	assert.Equal(t, []byte{';', ',', 0}, seps)

	_, _, err = splitTopLevel("a)", ",")
	require.Error(t, err)
}

func TestIndexWord(t *testing.T) {
	text := `X = "THEN" THEN PRINT 1`
	assert.Equal(t, 11, indexWord(text, "THEN", 0))
	assert.Equal(t, -1, indexWord("ATHENS", "THEN", 0))
	assert.Equal(t, 6, indexWord("A(TO) to 3", "TO", 0))
}
