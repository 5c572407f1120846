package model

import "fmt"

// Dog age limits accepted by the backend.
const (
	MinDogAge = 0
	MaxDogAge = 30
)

// Dog is a dog registered on the owner's profile.
type Dog struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Breed string `json:"breed,omitempty"`
	Age   *int   `json:"age,omitempty"`
}

// Label returns the display label used in dog pickers.
func (d Dog) Label() string {
	breed := d.Breed
	if breed == "" {
		breed = "razza non specificata"
	}
	return fmt.Sprintf("%s (%s)", d.Name, breed)
}

// ValidateDogInput checks a dog upsert payload the same way the backend does,
// so obviously bad input never leaves the client.
func ValidateDogInput(name string, age *int) error {
	if name == "" {
		return fmt.Errorf("dog name is required")
	}
	if age != nil && (*age < MinDogAge || *age > MaxDogAge) {
		return fmt.Errorf("dog age must be between %d and %d", MinDogAge, MaxDogAge)
	}
	return nil
}
