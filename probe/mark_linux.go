package probe

import (
	"errors"
	"net"
	"os"
	"reflect"
	"syscall"

	"golang.org/x/net/icmp"
)

// getFD gets the system file descriptor for an icmp.PacketConn
func getFD(c *icmp.PacketConn) (uintptr, error) {
	v := reflect.ValueOf(c).Elem().FieldByName("c").Elem()
	if v.Elem().Kind() != reflect.Struct {
		return 0, errors.New("invalid type")
	}

	fd := v.Elem().FieldByName("conn").FieldByName("fd")
	if fd.Elem().Kind() != reflect.Struct {
		return 0, errors.New("invalid type")
	}

	pfd := fd.Elem().FieldByName("pfd")
	if pfd.Kind() != reflect.Struct {
		return 0, errors.New("invalid type")
	}

	return uintptr(pfd.FieldByName("Sysfd").Int()), nil
}

// SetMark stamps outgoing probe packets with the given routing mark
// (SO_MARK), so policy routing can steer them past e.g. a VPN default
// route. Requires CAP_NET_ADMIN.
func (p *Pinger) SetMark(mark uint) error {
	for _, conn := range []net.PacketConn{p.conn4, p.conn6} {
		if conn == nil {
			continue
		}
		c, ok := conn.(*icmp.PacketConn)
		if !ok {
			return errors.New("invalid connection type")
		}

		fd, err := getFD(c)
		if err != nil {
			return err
		}

		err = os.NewSyscallError(
			"setsockopt",
			syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_MARK, int(mark)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
