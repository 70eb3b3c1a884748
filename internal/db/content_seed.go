package db

import (
	"github.com/ad/go-telegram-course/internal/models"
)

// defaultCourseContent is the 7-day course shipped with the bot. Days already
// present in the database are left untouched.
var defaultCourseContent = map[int][]models.ContentItem{
	1: {
		{Kind: models.ContentText, Payload: "Сегодня — День 1 нашего путешествия: **Разбуди своего Мечтателя!**"},
		{Kind: models.ContentText, Payload: "Внутри каждого из нас живет **Внутренний Ребенок.** Именно эта часть личности умеет мечтать по-настоящему."},
		{Kind: models.ContentText, Payload: "Задание Дня: **Создаем Базовый Список Желаний.** Приготовьте ручку и лист бумаги и записывайте всё, что вспомните — не включая логику и здравый смысл!"},
		{Kind: models.ContentText, Payload: "Обязательно **СОХРАНИТЕ ЭТОТ СПИСОК!** Он понадобится вам для всех последующих заданий курса. До встречи завтра в это же время!"},
	},
	2: {
		{Kind: models.ContentText, Payload: "День 2: **Фильтруем желания.**"},
		{Kind: models.ContentText, Payload: "Возьмите вчерашний список и отметьте желания, которые отзываются теплом в груди. Это — ваши настоящие желания."},
		{Kind: models.ContentText, Payload: "Задание Дня: выберите **5 главных желаний** и перепишите их на отдельный лист."},
	},
	3: {
		{Kind: models.ContentText, Payload: "День 3: **От желания к образу.**"},
		{Kind: models.ContentText, Payload: "Закройте глаза и представьте каждое из пяти желаний уже исполнившимся. Что вы видите? Что чувствуете?"},
		{Kind: models.ContentText, Payload: "Задание Дня: опишите самый яркий образ **тремя предложениями** в настоящем времени."},
	},
	4: {
		{Kind: models.ContentText, Payload: "День 4: **Убираем внутренние запреты.**"},
		{Kind: models.ContentText, Payload: "Рядом с каждым желанием запишите первую мысль-возражение: «это дорого», «мне уже поздно», «у меня не получится»."},
		{Kind: models.ContentText, Payload: "Задание Дня: перепишите каждое возражение в разрешение. «Мне можно. Я выбираю попробовать.»"},
	},
	5: {
		{Kind: models.ContentText, Payload: "День 5: **Мечта становится целью.**"},
		{Kind: models.ContentText, Payload: "Выберите одно желание из пяти — то, от которого сердце бьется чаще."},
		{Kind: models.ContentText, Payload: "Задание Дня: сформулируйте его как цель — конкретно, измеримо и со сроком."},
	},
	6: {
		{Kind: models.ContentText, Payload: "День 6: **Первый шаг.**"},
		{Kind: models.ContentText, Payload: "Большая цель пугает целиком, но не пугает по шагам."},
		{Kind: models.ContentText, Payload: "Задание Дня: запишите **три маленьких шага** к цели и сделайте первый из них сегодня, до конца дня."},
	},
	7: {
		{Kind: models.ContentText, Payload: "День 7: **Опора на себя.**"},
		{Kind: models.ContentText, Payload: "Перечитайте записи всех шести дней. Посмотрите, какой путь вы прошли за неделю."},
		{Kind: models.ContentText, Payload: "Задание Дня: напишите письмо себе через год — от человека, который уже живет своей мечтой."},
		{Kind: models.ContentText, Payload: "Спасибо, что прошли этот путь. Ваша мечта уже в дороге к вам!"},
	},
}

func SeedDefaultContent(repo *ContentRepository) error {
	for day := 1; day <= len(defaultCourseContent); day++ {
		if err := repo.SeedDay(day, defaultCourseContent[day]); err != nil {
			return err
		}
	}
	return nil
}
