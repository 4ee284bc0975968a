package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/basetutor/internal/models"
)

// Credentials is what the register and login prompts collect.
type Credentials struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// PromptCredentials asks for a username and password, and for an email and
// role as well when register is set. An empty role answer means student.
func PromptCredentials(in *bufio.Scanner, out io.Writer, register bool) Credentials {
	var c Credentials
	c.Username = ask(in, out, "Username: ")
	if register {
		c.Email = ask(in, out, "Email: ")
	}
	c.Password = ask(in, out, "Password: ")
	if register {
		c.Role = models.Role(strings.ToLower(ask(in, out, "Role (student/tutor) [student]: ")))
	}
	return c
}

func ask(in *bufio.Scanner, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
