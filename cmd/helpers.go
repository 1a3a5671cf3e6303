package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ConfirmAction prompts on stdin for a Y/N answer to actionText. deniedText
// is logged when the answer is no.
func ConfirmAction(actionText, deniedText string) (bool, error) {
	return confirmAction(os.Stdin, actionText, deniedText)
}

func confirmAction(r io.Reader, actionText, deniedText string) (bool, error) {
	reader := bufio.NewReader(r)
	log.Warn(actionText)
	for {
		fmt.Print(">> ")
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return false, errors.Wrap(err, "could not read answer")
		}
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "Y":
			return true, nil
		case "N":
			log.Info(deniedText)
			return false, nil
		default:
			log.Errorf("Invalid option of %q chosen, enter Y/N", strings.TrimSpace(line))
		}
	}
}
