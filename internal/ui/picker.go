package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/dsablic/klio/internal/model"
)

// ErrNoDirectories is returned by PickDirectory when there is nothing to
// choose from.
var ErrNoDirectories = errors.New("no directories found")

// PickDirectory asks the user to choose one of dirs.
func PickDirectory(dirs []model.Directory) (model.Directory, error) {
	if len(dirs) == 0 {
		return model.Directory{}, ErrNoDirectories
	}

	options := make([]huh.Option[int], 0, len(dirs))
	for i, d := range dirs {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  (%s)", d.Name, d.ID), i))
	}

	var choice int
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Which directory should be analyzed?").
			Options(options...).
			Value(&choice),
	)).WithOutput(os.Stderr)

	if err := form.Run(); err != nil {
		return model.Directory{}, fmt.Errorf("pick directory: %w", err)
	}
	return dirs[choice], nil
}
