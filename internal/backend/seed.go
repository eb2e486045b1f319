package backend

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/atinyakov/GophTasks/internal/models"
)

//go:embed seed/login.json seed/tasks.json
var seedFS embed.FS

// Seed is the static data the simulator starts from.
type Seed struct {
	Credentials map[string]models.CredentialRecord
	Tasks       []models.Task
}

// LoadSeed reads the credential table and the task dataset.
// An empty path selects the embedded default for that file.
func LoadSeed(credentialsPath, tasksPath string) (*Seed, error) {
	var seed Seed
	if err := readSeedFile(credentialsPath, "seed/login.json", &seed.Credentials); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if err := readSeedFile(tasksPath, "seed/tasks.json", &seed.Tasks); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if seed.Tasks == nil {
		seed.Tasks = []models.Task{}
	}
	return &seed, nil
}

func readSeedFile(path, embedded string, dst any) error {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = seedFS.ReadFile(embedded)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
