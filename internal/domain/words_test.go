package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestUniqueWords(t *testing.T) {
	t.Parallel()

	got := UniqueWords([]string{" apple", "banana", "apple ", "", "  ", "cherry", "banana"})
	want := []string{"apple", "banana", "cherry"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := UniqueWords(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestNewDailyWordPool(t *testing.T) {
	t.Parallel()

	pool, err := NewDailyWordPool("2025-03-14", []string{"a", "a", "b"}, []string{"c"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(pool.NewWords, []string{"a", "b"}) {
		t.Errorf("Expected deduplicated new words, got %v", pool.NewWords)
	}
	if pool.IsEmpty() {
		t.Error("Expected pool with words not to be empty")
	}

	empty, err := NewDailyWordPool("2025-03-14", nil, []string{" "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !empty.IsEmpty() {
		t.Error("Expected pool of blank words to be empty")
	}

	if _, err := NewDailyWordPool("14/03/2025", nil, nil); !errors.Is(err, ErrInvalidTaskDate) {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskDate, err)
	}
}
