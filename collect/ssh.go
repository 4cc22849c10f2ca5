package collect

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
)

type SSHConnection struct {
	client   *ssh.Client
	session  *ssh.Session
	username string
	host     string
	port     int
}

// If you've run a command and want to run another, you need to reset the session
func (conn *SSHConnection) Reset() (err error) {
	if err = conn.session.Close(); err != nil {
		return
	}

	conn.session, err = conn.client.NewSession()
	return
}

func (conn *SSHConnection) Close() (err error) {
	if err = conn.session.Close(); err != nil {
		return
	}

	err = conn.client.Close()
	return
}

func (conn *SSHConnection) SendWithOutput(command string) (status int, output []byte, err error) {
	if output, err = conn.session.CombinedOutput(command); err != nil {
		var (
			exitErr *ssh.ExitError
			ok      bool
		)

		if exitErr, ok = err.(*ssh.ExitError); ok {
			status = exitErr.ExitStatus()
			err = nil
			return
		}

		status = -1
		return
	}

	status = 0
	return
}

func WithPrivateKeyFile(path string) (auth ssh.AuthMethod, err error) {
	var (
		key    []byte
		signer ssh.Signer
	)

	if key, err = os.ReadFile(path); err != nil {
		return
	}

	if signer, err = ssh.ParsePrivateKey(key); err != nil {
		return
	}

	auth = ssh.PublicKeys(signer)
	return
}

func WithPassword(password string) ssh.AuthMethod {
	return ssh.Password(password)
}

func Connect(username, host string, port int, auth ssh.AuthMethod) (conn *SSHConnection, err error) {
	conn = &SSHConnection{
		username: username,
		host:     host,
		port:     port,
	}

	if conn.client, err = ssh.Dial("tcp", fmt.Sprintf("%s:%d", host, port), &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}); err != nil {
		return nil, err
	}

	if conn.session, err = conn.client.NewSession(); err != nil {
		conn.client.Close()
		return nil, err
	}

	return conn, nil
}
