// Package notify はタスク割り当て時の通知を送ります。
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/JulianRp2177/api-task-manager/internal/config"
)

// Notifier は割り当て通知の送信先です。
type Notifier interface {
	TaskAssigned(ctx context.Context, userEmail, taskTitle string) error
}

// New は設定に応じたNotifierを返します。SMTPが未設定ならログに出すだけです。
func New(cfg *config.Config) Notifier {
	if cfg.SMTP.Enabled() {
		return NewSMTPNotifier(cfg.SMTP)
	}
	return NewLogNotifier(log.Default())
}

// LogNotifier は通知をログに記録します。
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier は新しいLogNotifierを作成します。
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) TaskAssigned(_ context.Context, userEmail, taskTitle string) error {
	n.logger.Printf("Simulated notification sent to %s for task '%s'", userEmail, taskTitle)
	return nil
}

// DefaultSendTimeout は1通のメール送信 (接続から QUIT まで) にかける上限です。
const DefaultSendTimeout = 5 * time.Second

// SendMailFunc は smtp.SendMail に ctx を加えたシグネチャです。ctx の期限で送信を打ち切ります。
type SendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier は割り当て通知をメールで送ります。
type SMTPNotifier struct {
	cfg      config.SMTPConfig
	sendMail SendMailFunc
	timeout  time.Duration
}

// NewSMTPNotifier は新しいSMTPNotifierを作成します。
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, sendMail: SendMail, timeout: DefaultSendTimeout}
}

// WithSendMail は送信関数を差し替えたコピーを返します。
func (n *SMTPNotifier) WithSendMail(fn SendMailFunc) *SMTPNotifier {
	cp := *n
	cp.sendMail = fn
	return &cp
}

// WithTimeout は送信の上限時間を差し替えたコピーを返します。
func (n *SMTPNotifier) WithTimeout(d time.Duration) *SMTPNotifier {
	cp := *n
	cp.timeout = d
	return &cp
}

func (n *SMTPNotifier) TaskAssigned(ctx context.Context, userEmail, taskTitle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)
	if err := n.sendMail(ctx, addr, auth, n.cfg.From, []string{userEmail}, assignmentMessage(n.cfg.From, userEmail, taskTitle)); err != nil {
		return fmt.Errorf("failed to send assignment email: %w", err)
	}
	return nil
}

// assignmentMessage は割り当て通知のメール本文を組み立てます。
// タイトル中の改行は空白に置き換え、件名はRFC 2047でエンコードします。
func assignmentMessage(from, to, taskTitle string) []byte {
	title := strings.NewReplacer("\r", " ", "\n", " ").Replace(taskTitle)
	subject := mime.QEncoding.Encode("utf-8", "Task assigned: "+title)
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nYou have been assigned the task '%s'.\r\n",
		from, to, subject, title,
	))
}

// SendMail は smtp.SendMail と同じ手順で送信しますが、接続と全体の入出力を ctx の期限で制限します。
func SendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
