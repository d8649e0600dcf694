package Constants

// WhatsappGoService is the base URL of the WhatsApp HTTP gateway.
// Set once from config in main before any message is sent.
var WhatsappGoService string
