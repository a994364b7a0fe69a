//go:build tinygo && !pico && !pyportal && !nano_rp2040 && !metro_m4_airlift && !arduino_mkrwifi1010 && !matrixportal_m4 && !wioterminal

package tinynet

func netConnect(ssid, pass string) error {
	return ErrNoRadio
}
