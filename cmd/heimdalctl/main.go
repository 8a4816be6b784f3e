// Command heimdalctl is a minimal CLI client for exercising a running
// heimdalld gateway: send a NewOrder frame and print execution/error
// reports as they arrive.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the heimdalld gateway")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	price := flag.String("price", "100.00", "limit price")
	qty := flag.String("qty", "10", "order quantity")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	go readReports(conn)

	side := byte(0)
	if *sideStr == "sell" {
		side = 1
	}

	if err := sendNewOrder(conn, side, *price, *qty); err != nil {
		log.Fatalf("send order: %v", err)
	}
	fmt.Printf("-> sent %s order: %s @ %s\n", *sideStr, *qty, *price)

	fmt.Println("listening for reports (ctrl-c to exit)...")
	select {}
}

const (
	msgNewOrder = uint16(1)
)

func sendNewOrder(conn net.Conn, side byte, price, qty string) error {
	buf := make([]byte, 0, 32)

	var opcode [2]byte
	binary.BigEndian.PutUint16(opcode[:], msgNewOrder)
	buf = append(buf, opcode[:]...)
	buf = append(buf, side)
	buf = appendDecimalString(buf, price)
	buf = appendDecimalString(buf, qty)

	_, err := conn.Write(buf)
	return err
}

func appendDecimalString(buf []byte, s string) []byte {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func readReports(conn net.Conn) {
	for {
		header := make([]byte, 1+8+1)
		if _, err := io.ReadFull(conn, header); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		reportType := header[0]
		orderID := binary.BigEndian.Uint64(header[1:9])
		side := header[9]

		price, err := readDecimalFrame(conn)
		if err != nil {
			log.Printf("read price: %v", err)
			return
		}
		qty, err := readDecimalFrame(conn)
		if err != nil {
			log.Printf("read qty: %v", err)
			return
		}

		counterpartyBuf := make([]byte, 8)
		if _, err := io.ReadFull(conn, counterpartyBuf); err != nil {
			log.Printf("read counterparty: %v", err)
			return
		}
		counterparty := binary.BigEndian.Uint64(counterpartyBuf)

		errLenBuf := make([]byte, 2)
		if _, err := io.ReadFull(conn, errLenBuf); err != nil {
			log.Printf("read err len: %v", err)
			return
		}
		errLen := binary.BigEndian.Uint16(errLenBuf)
		errStr := ""
		if errLen > 0 {
			errBuf := make([]byte, errLen)
			if _, err := io.ReadFull(conn, errBuf); err != nil {
				log.Printf("read err string: %v", err)
				return
			}
			errStr = string(errBuf)
		}

		if reportType == 1 {
			fmt.Printf("\n[ERROR] %s\n", errStr)
			continue
		}
		sideStr := "BUY"
		if side == 1 {
			sideStr = "SELL"
		}
		fmt.Printf("\n[EXECUTION] order=%d %s %s @ %s vs=%d\n", orderID, sideStr, qty, price, counterparty)
	}
}

func readDecimalFrame(conn net.Conn) (string, error) {
	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf)
	strBuf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(conn, strBuf); err != nil {
			return "", err
		}
	}
	return string(strBuf), nil
}
