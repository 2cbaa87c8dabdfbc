package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"wagate_app_echo/internal/services"
)

func main() {
	phone := flag.String("phone", "", "Phone number (e.g. 628123456789)")
	msg := flag.String("msg", "Test message from WhatsAppService", "Message body")
	flag.Parse()

	if *phone == "" {
		log.Fatal("Please provide a phone number using -phone flag")
	}

	// Load envs
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found")
	}

	service := services.NewWhatsAppService()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("Sending message to %s: %s", *phone, *msg)

	if err := service.SendMessage(ctx, *phone, *msg); err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}

	log.Println("Message sent successfully!")
}
