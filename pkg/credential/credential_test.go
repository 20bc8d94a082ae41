package credential

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewServiceDefaultsBlankCode(t *testing.T) {
	require.Equal(t, DefaultCode, NewService("  ").Current())
	require.Equal(t, "abc", NewService(" abc ").Current())
}

func TestRotateNotifiesListeners(t *testing.T) {
	s := NewService("old")

	var got []string
	s.OnRotate(func(code string) { got = append(got, code) })

	s.Rotate("new")
	s.Rotate("new")
	s.Rotate("")

	require.Equal(t, "new", s.Current())
	require.Equal(t, []string{"new"}, got)
}

func TestGenerateFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+-\d{2}$`)
	for i := 0; i < 20; i++ {
		require.Regexp(t, pattern, Generate())
	}
}

func TestConcurrentRotationsDeliverInOrder(t *testing.T) {
	s := NewService("start")

	var mu sync.Mutex
	var delivered []string
	s.OnRotate(func(code string) {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, code)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Rotate(fmt.Sprintf("code-%02d", i))
		}(i)
	}
	wg.Wait()

	require.Len(t, delivered, 50)
	require.Equal(t, s.Current(), delivered[len(delivered)-1])
}
