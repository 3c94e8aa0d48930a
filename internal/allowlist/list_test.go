package allowlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmehdipour/email-dispatch/internal/config"
)

func TestParse(t *testing.T) {
	assert.Equal(t, []string{"Welcome", "PasswordReset"}, Parse(" Welcome ,, PasswordReset,"))
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse(" , "))
}

func TestList_Contains(t *testing.T) {
	l := New("Welcome,Digest")

	assert.True(t, l.Contains("Welcome"))
	assert.True(t, l.Contains("Digest"))
	assert.False(t, l.Contains("welcome"), "matching is case-sensitive")
	assert.False(t, l.Contains(""))
	assert.Equal(t, 2, l.Len())

	var zero List
	assert.False(t, zero.Contains("Welcome"))
	assert.Equal(t, 0, zero.Len())
}

func TestList_ReplaceIsWholesale(t *testing.T) {
	l := New("A,B")
	l.Replace("C")

	assert.False(t, l.Contains("A"))
	assert.False(t, l.Contains("B"))
	assert.True(t, l.Contains("C"))
}

func TestList_ConcurrentReadersSeeCompleteSnapshots(t *testing.T) {
	even := "a0,a1,a2,a3"
	odd := "b0,b1,b2,b3"
	l := New(even)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// either all of a* or none of them
				n := 0
				for i := 0; i < 4; i++ {
					if l.Contains(fmt.Sprintf("a%d", i)) {
						n++
					}
				}
				if n != 0 && n != 4 {
					t.Errorf("partial snapshot observed: %d of 4", n)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			l.Replace(odd)
		} else {
			l.Replace(even)
		}
	}
	close(stop)
	wg.Wait()
}

func TestList_FollowAppliesConfigChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sendgrid:\n  email_types_csv: Welcome\n"), 0o644))

	w, err := config.NewWatcher(path, nil)
	require.NoError(t, err)

	l := New(w.Current().SendGrid.EmailTypesCSV)
	sub := l.Follow(w)
	defer sub.Close()
	require.True(t, l.Contains("Welcome"))

	require.NoError(t, os.WriteFile(path, []byte("sendgrid:\n  email_types_csv: Digest\n"), 0o644))

	assert.Eventually(t, func() bool {
		return l.Contains("Digest") && !l.Contains("Welcome")
	}, 5*time.Second, 20*time.Millisecond)
}
