// Package messages renders every customer and admin facing text and choice menu.
// Texts are plain (no parse mode) so free-text customer input never breaks delivery.
package messages

import (
	"fmt"
	"strings"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/shopspring/decimal"
)

const (
	Banned              = "❌ You have been banned from using this bot. Please contact support."
	Cancelled           = "Order cancelled. Use /start to begin again."
	NoProducts          = "No products available at the moment."
	ProductsUnavailable = "Error fetching products. Please try again later."
	ProductNotFound     = "Sorry, that product is no longer available."
	OrdersUnavailable   = "Error fetching your orders."
	NoOrders            = "You haven't placed any orders yet."
	TryAgainLater       = "Something went wrong. Please try again later."
	NotAdmin            = "⛔ This command is only available to linked admin accounts."
	PaymentPhotoCaption = "Payment Screenshot"
	OrderActionFailed   = "Error processing action."
	OrderNotFound       = "Order not found."

	AskName         = "Please enter your full name:"
	AskNameAgain    = "Please enter your correct name:"
	AskPhone        = "Please enter your phone number:"
	AskPhoneAgain   = "Please enter your correct phone number:"
	AskHouseNo      = "Please enter your house/building number:"
	AskHouseNoAgain = "Please enter your house/building number again:"
	AskStreet       = "Please enter your street name:"
	AskWard         = "Please enter your ward (quarter):"
	AskTownship     = "Please enter your township:"
	AskCity         = "Please enter your city:"
	AskDelivery     = "Please select your delivery type:"
	AskPaymentPhoto = "Please send a photo of your payment screenshot."
	AskValidNumber  = "Please enter a valid number."
	AskNonEmpty     = "Please enter a value."
	EditMenuPrompt  = "What would you like to edit?"
	UseButtons      = "Please use the buttons above, or /cancel to start over."
	UnknownInput    = "I didn't understand that. Use /start to browse products or /help for instructions."
	CartEmptied     = "Your cart is now empty. Pick a product to continue."

	MarkerApproved = "✅ APPROVED"
	MarkerRejected = "❌ REJECTED"
)

var Help = strings.TrimSpace(`
ℹ️ How to Use This Bot

1️⃣ Browse products using /start or the menu
2️⃣ Select a product to view details
3️⃣ Click "Order Now" to place an order
4️⃣ You can add multiple products to your cart
5️⃣ Fill in your details step by step
6️⃣ Upload payment screenshot
7️⃣ Wait for admin approval

📞 Commands
/start - Start the bot
/orders - View your orders
/help - Show this help message
/cancel - Cancel the current order

Need support? Contact our team!`)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Welcome(firstName string) (string, ports.Keyboard) {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Welcome %s!\n\n🎁 Telegram Order Bot\n\nI can help you browse products and place orders easily.\n\nChoose an option below to get started:", name)
	return text, MainMenu()
}

func MainMenu() ports.Keyboard {
	return ports.Keyboard{
		{{Label: "📦 Check Products", Data: BrowseCallback(0)}},
		{{Label: "🛍️ My Orders", Data: CallbackMyOrders}},
		{{Label: "ℹ️ Help", Data: CallbackHelp}},
	}
}

func productBody(p domain.Product) string {
	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = "No description available"
	}
	return fmt.Sprintf("📦 %s\n🆔 Product ID: %s\n\n%s\n\n💰 Price: %s\n📊 Stock: %d units",
		p.Name, p.ID, description, money(p.Price), p.Stock)
}

// DeepLinkProduct is shown for /start <productID>.
func DeepLinkProduct(p domain.Product) (string, ports.Keyboard) {
	return productBody(p) + "\n\nClick below to order this product!", ports.Keyboard{
		{{Label: "🛒 Order This Product", Data: OrderCallback(p.ID)}},
		{{Label: "📦 Browse All Products", Data: BrowseCallback(0)}},
	}
}

func ProductDetail(p domain.Product) (string, ports.Keyboard) {
	return productBody(p), ports.Keyboard{
		{{Label: "🛒 Order Now", Data: OrderCallback(p.ID)}},
		{{Label: "« Back to Products", Data: BrowseCallback(0)}},
	}
}

func CatalogPage(page domain.ProductPage) (string, ports.Keyboard) {
	keyboard := make(ports.Keyboard, 0, len(page.Products)+2)
	for _, p := range page.Products {
		keyboard = append(keyboard, []ports.Choice{{
			Label: fmt.Sprintf("%s - %s", p.Name, money(p.Price)),
			Data:  ProductCallback(p.ID),
		}})
	}

	var nav []ports.Choice
	if page.HasPrevious() {
		nav = append(nav, ports.Choice{Label: "⬅️ Previous", Data: BrowseCallback(page.Page - 1)})
	}
	if page.HasNext() {
		nav = append(nav, ports.Choice{Label: "Next ➡️", Data: BrowseCallback(page.Page + 1)})
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard, []ports.Choice{{Label: "« Back to Menu", Data: CallbackBackToMenu}})

	text := fmt.Sprintf("📦 Available Products (Page %d/%d)\n\nSelect a product to view details:", page.Page+1, page.TotalPages)
	return text, keyboard
}

func AskQuantity(p domain.Product) string {
	return fmt.Sprintf("How many %s would you like to order?\n\nPlease enter a quantity (1-%d):", p.Name, p.Stock)
}

func InvalidQuantity(stock int) string {
	return fmt.Sprintf("Invalid quantity. Please enter a number between 1 and %d.", stock)
}

func OutOfStock(p domain.Product) string {
	return fmt.Sprintf("Sorry, %s is out of stock.", p.Name)
}

func ItemAdded(item domain.CartItem, subtotal decimal.Decimal) (string, ports.Keyboard) {
	text := fmt.Sprintf("✅ Added %d x %s to cart\n💰 Subtotal: %s\n\nDo you want to add more products?",
		item.Quantity, item.ProductName, money(subtotal))
	return text, ports.Keyboard{
		{{Label: "✅ Yes, Add More", Data: CallbackAddMoreYes}},
		{{Label: "❌ No, Continue to Checkout", Data: CallbackAddMoreNo}},
	}
}

func ConfirmName(name string) (string, ports.Keyboard) {
	return fmt.Sprintf("Your name: %s\n\nIs this correct?", name), ports.Keyboard{
		{{Label: "✅ Correct", Data: CallbackNameCorrect}},
		{{Label: "✏️ Wrong (Edit)", Data: CallbackNameWrong}},
	}
}

func ConfirmPhone(phone string) (string, ports.Keyboard) {
	return fmt.Sprintf("Your phone: %s\n\nIs this correct?", phone), ports.Keyboard{
		{{Label: "✅ Correct", Data: CallbackPhoneCorrect}},
		{{Label: "✏️ Wrong (Edit)", Data: CallbackPhoneWrong}},
	}
}

func ConfirmAddress(address domain.Address) (string, ports.Keyboard) {
	return fmt.Sprintf("Your address:\n%s\n\nIs this correct?", address), ports.Keyboard{
		{{Label: "✅ Correct", Data: CallbackAddressCorrect}},
		{{Label: "✏️ Wrong (Re-enter)", Data: CallbackAddressWrong}},
	}
}

func DeliveryMenu() ports.Keyboard {
	return ports.Keyboard{
		{{Label: "🚗 " + domain.DeliveryExpressCars.Label(), Data: PrefixDelivery + string(domain.DeliveryExpressCars)}},
		{{Label: "🚚 " + domain.DeliveryDeliveryCompany.Label(), Data: PrefixDelivery + string(domain.DeliveryDeliveryCompany)}},
	}
}

func itemLines(items []domain.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("• %s x %d - %s", item.ProductName, item.Quantity, money(item.LineTotal())))
	}
	return strings.Join(lines, "\n")
}

// OrderSummary is the final confirmation shown before payment.
func OrderSummary(profile domain.CustomerProfile, items []domain.CartItem, delivery domain.DeliveryType) (string, ports.Keyboard) {
	text := fmt.Sprintf("📋 ORDER SUMMARY\n\nItems:\n%s\n\nTotal Cost: %s\n\nCustomer Info:\nName: %s\nPhone: %s\nAddress: %s\n\nDelivery Type: %s\n\nConfirm all details are correct?",
		itemLines(items), money(domain.CartTotal(items)),
		profile.Name, profile.Phone, profile.Address,
		delivery.Label(),
	)
	return text, ports.Keyboard{
		{{Label: "✅ Yes, Confirm", Data: CallbackFinalYes}},
		{{Label: "✏️ No, Edit Details", Data: CallbackFinalNo}},
	}
}

func EditMenu() (string, ports.Keyboard) {
	return EditMenuPrompt, ports.Keyboard{
		{{Label: "👤 Edit Name", Data: CallbackEditName}},
		{{Label: "📞 Edit Phone", Data: CallbackEditPhone}},
		{{Label: "📍 Edit Address", Data: CallbackEditAddress}},
		{{Label: "🛒 Edit Products", Data: CallbackEditProducts}},
		{{Label: "🚚 Edit Delivery Type", Data: CallbackEditDelivery}},
		{{Label: "« Back to Confirmation", Data: CallbackBackToConfirm}},
	}
}

// CartEditor lists the cart with one remove button per line.
func CartEditor(items []domain.CartItem) (string, ports.Keyboard) {
	keyboard := make(ports.Keyboard, 0, len(items)+1)
	for i, item := range items {
		keyboard = append(keyboard, []ports.Choice{{
			Label: fmt.Sprintf("🗑 Remove %s x %d", item.ProductName, item.Quantity),
			Data:  CartRemoveCallback(i),
		}})
	}
	keyboard = append(keyboard, []ports.Choice{
		{Label: "➕ Add Product", Data: CallbackCartAdd},
		{Label: "✅ Done", Data: CallbackCartDone},
	})

	text := fmt.Sprintf("🛒 Your cart:\n%s\n\nTotal: %s", itemLines(items), money(domain.CartTotal(items)))
	return text, keyboard
}

func PaymentInstructions(paymentDetails string, total decimal.Decimal) string {
	return fmt.Sprintf("%s\n\n💰 Total Amount: %s\n\nPlease upload your payment screenshot after making the payment.",
		strings.TrimSpace(paymentDetails), money(total))
}

func ReceiptCaption(orderID string) string {
	return fmt.Sprintf("✅ Order placed successfully!\n\n📝 Order ID: %s", orderID)
}

func OrderPlaced(order domain.Order) string {
	return fmt.Sprintf("✅ Order placed successfully!\n\n📝 Order ID: %s\n💰 Total: %s\n\nYour order is pending approval. You will be notified once it's approved!",
		order.ID, money(order.TotalCost))
}

func OrderFailed(err error) string {
	return fmt.Sprintf("Error processing your order. Please try again later.\n\nError details: %v", err)
}

// AdminOrder is the admin channel notification; the keyboard carries the decision buttons.
func AdminOrder(order domain.Order) (string, ports.Keyboard) {
	return adminOrderText(order), ports.Keyboard{
		{{Label: "✅ Approve", Data: ApproveCallback(order.ID)}},
		{{Label: "❌ Reject", Data: RejectCallback(order.ID)}},
	}
}

func adminOrderText(order domain.Order) string {
	return fmt.Sprintf("🆕 NEW ORDER RECEIVED\n\n📝 Order ID: %s\n👤 Customer: %s\n📞 Phone: %s\n📍 Address: %s\n\n🛒 Items:\n%s\n\n💰 Total: %s\n🚚 Delivery: %s",
		order.ID, order.Customer.Name, order.Customer.Phone, order.Customer.Address,
		itemLines(order.Items), money(order.TotalCost), order.DeliveryType.Label(),
	)
}

// AdminDecided is the admin notification after a decision, with the buttons removed.
func AdminDecided(order domain.Order) string {
	return adminOrderText(order) + "\n\n" + statusMarker(order.Status)
}

// AdminAlreadyDecided is shown when a decision arrives for an order that is no longer pending.
func AdminAlreadyDecided(order domain.Order) string {
	return adminOrderText(order) + "\n\n" + fmt.Sprintf("ℹ️ Order already %s", order.Status)
}

func statusMarker(status domain.OrderStatus) string {
	switch status {
	case domain.StatusApproved:
		return MarkerApproved
	case domain.StatusRejected:
		return MarkerRejected
	default:
		return strings.ToUpper(string(status))
	}
}

func Approved(orderID string) string {
	return fmt.Sprintf("✅ Your order #%s has been approved and sent to delivery!", orderID)
}

func Rejected(orderID string) string {
	return fmt.Sprintf("❌ Your order #%s has been rejected. Please contact admin for more information.", orderID)
}

func Delivered(orderID string) string {
	return fmt.Sprintf("📦 Your order #%s has been delivered. Thank you for shopping with us!", orderID)
}

var statusEmoji = map[domain.OrderStatus]string{
	domain.StatusPending:   "⏳",
	domain.StatusApproved:  "✅",
	domain.StatusRejected:  "❌",
	domain.StatusDelivered: "📦",
}

func MyOrders(orders []domain.Order) string {
	if len(orders) == 0 {
		return NoOrders
	}

	var b strings.Builder
	b.WriteString("📋 Your Recent Orders\n")
	for _, order := range orders {
		emoji, ok := statusEmoji[order.Status]
		if !ok {
			emoji = "❓"
		}
		status := string(order.Status)
		if status != "" {
			status = strings.ToUpper(status[:1]) + status[1:]
		}
		fmt.Fprintf(&b, "\n%s %s\nStatus: %s\nTotal: %s\nDate: %s\n",
			emoji, order.ID, status, money(order.TotalCost), order.CreatedAt.Format("2006-01-02"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func ChatInfo(chatID int64, chatType, chatTitle string) string {
	if chatTitle == "" {
		chatTitle = "Private Chat"
	}
	return fmt.Sprintf("📋 Chat Information\n\nChat ID: %d\nChat Type: %s\nChat Title: %s\n\n💡 Tip: If this is your admin channel, set this Chat ID as the ADMIN_CHANNEL_ID environment variable.",
		chatID, chatType, chatTitle)
}

func AdminPanel(url string) string {
	return fmt.Sprintf("🔐 Admin Panel\n\nAccess the admin panel to manage:\n• Products & Inventory\n• Orders & Approvals\n• Users & Permissions\n\n🔗 Admin Panel Link:\n%s\n\n📝 Note: You'll need to login with your authorized admin account.", url)
}
